package domain

// LibraryItem is the filesystem-level record that owns exactly one media
// row (a Book or a Podcast) selected by MediaType.
type LibraryItem struct {
	Syncable
	LibraryID    string        `json:"library_id"`
	MediaID      string        `json:"media_id"`
	MediaType    MediaType     `json:"media_type"`
	Path         string        `json:"path"`
	RelPath      string        `json:"rel_path"`
	Size         int64         `json:"size"`
	MtimeMs      int64         `json:"mtime_ms"`
	BirthtimeMs  int64         `json:"birthtime_ms"`
	IsMissing    bool          `json:"is_missing"`
	IsInvalid    bool          `json:"is_invalid"`
	LibraryFiles []LibraryFile `json:"library_files,omitempty"`
}

// LibraryFile is a file found inside a library item's folder.
type LibraryFile struct {
	Ino             string `json:"ino"`
	Path            string `json:"path"`
	FileType        string `json:"fileType"`
	IsSupplementary *bool  `json:"isSupplementary,omitempty"`
}

// HasIssues reports whether the item is missing on disk or failed validation.
func (li *LibraryItem) HasIssues() bool {
	return li.IsMissing || li.IsInvalid
}
