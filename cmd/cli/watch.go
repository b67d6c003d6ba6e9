package main

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/api/handlers"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the active profile's downloads live",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		streamURL, err := websocketURL(serverURL, "/api/v1/downloads/stream")
		exitOnError(err)

		conn, _, err := websocket.DefaultDialer.Dial(streamURL, nil)
		exitOnError(err)
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

		frames := make(chan handlers.ViewMessage)
		readErr := make(chan error, 1)
		go func() {
			for {
				var msg handlers.ViewMessage
				if err := conn.ReadJSON(&msg); err != nil {
					readErr <- err
					return
				}
				frames <- msg
			}
		}()

		for {
			select {
			case msg := <-frames:
				renderView(msg)
			case err := <-readErr:
				log.Debug("Stream closed", zap.Error(err))
				fmt.Fprintln(os.Stderr, "Stream closed by server")
				return
			case <-interrupt:
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	},
}

// websocketURL turns an http(s) base URL into a ws(s) URL for path
func websocketURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}

func renderView(msg handlers.ViewMessage) {
	// Clear screen and home cursor
	fmt.Print("\033[H\033[2J")
	if !msg.Owner.HasProfile() {
		fmt.Println("No profile selected")
		return
	}
	fmt.Printf("%s  total %d  downloading %d  paused %d  completed %d\n\n",
		msg.Owner, msg.Stats.Total, msg.Stats.Downloading, msg.Stats.Paused, msg.Stats.Completed)
	if len(msg.Downloads) == 0 {
		fmt.Println("No downloads")
		return
	}
	printDownloads(os.Stdout, msg.Downloads)
}
