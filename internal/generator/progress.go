package generator

// ProgressReporter provides callbacks for reporting generation progress.
// Implementations can display progress bars, log messages, or remain silent.
// OnFileProcessed may be called from several goroutines, never concurrently.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnFileProcessingStart is called before processing files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is processed.
	OnFileProcessed(relPath string)

	// OnComplete is called when generation completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                    {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)        {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(relPath string)       {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)              {}
