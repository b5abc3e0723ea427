package offline

import "fmt"

// ModelNotAvailableError indicates no model exists for the language pair.
type ModelNotAvailableError struct {
	SourceLang string
	TargetLang string
}

func (e *ModelNotAvailableError) Error() string {
	return fmt.Sprintf("no offline model available for %s->%s", e.SourceLang, e.TargetLang)
}

// ModelNotInstalledError indicates an uninstall of a model that is not
// installed.
type ModelNotInstalledError struct {
	SourceLang string
	TargetLang string
}

func (e *ModelNotInstalledError) Error() string {
	return fmt.Sprintf("offline model %s->%s is not installed", e.SourceLang, e.TargetLang)
}

// ModelLoadFailedError indicates a model payload is present on disk but
// unreadable or corrupt.
type ModelLoadFailedError struct {
	ID    string
	Cause error
}

func (e *ModelLoadFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load offline model %q: %v", e.ID, e.Cause)
	}
	return fmt.Sprintf("failed to load offline model %q", e.ID)
}

func (e *ModelLoadFailedError) Unwrap() error {
	return e.Cause
}

// DownloadFailedError indicates the install-time payload acquisition
// failed. Acquisition itself is the downloader collaborator's job; this
// type only carries its cause across the registry boundary.
type DownloadFailedError struct {
	Language string
	Cause    error
}

func (e *DownloadFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model download for %q failed: %v", e.Language, e.Cause)
	}
	return fmt.Sprintf("model download for %q failed", e.Language)
}

func (e *DownloadFailedError) Unwrap() error {
	return e.Cause
}
