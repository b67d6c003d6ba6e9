package domain

// SnapshotStore persists the whole download registry as one snapshot
type SnapshotStore interface {
	// Load returns the last saved snapshot, or an empty one if nothing was saved
	Load() (Snapshot, error)

	// Save overwrites the stored snapshot
	Save(snapshot Snapshot) error
}

// Notifier is told about downloads that finished
type Notifier interface {
	NotifyDownloadCompleted(download Download)
}

// DownloadStats counts the downloads of one owner by state
type DownloadStats struct {
	Total       int `json:"total"`
	Downloading int `json:"downloading"`
	Paused      int `json:"paused"`
	Completed   int `json:"completed"`
}

// CountStats tallies a list of downloads
func CountStats(downloads []Download) DownloadStats {
	stats := DownloadStats{Total: len(downloads)}
	for _, d := range downloads {
		switch d.State {
		case StateDownloading:
			stats.Downloading++
		case StatePaused:
			stats.Paused++
		case StateCompleted:
			stats.Completed++
		}
	}
	return stats
}
