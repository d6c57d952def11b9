package models

// UploadManifestEntry is one local file queued for object storage. The key
// is derived from (content kind, content id, relative path), so entries for
// the same content always land on the same objects.
type UploadManifestEntry struct {
	LocalPath    string
	Key          string
	Filename     string
	ContentType  string
	CacheControl string
	SizeBytes    int64
}

// UploadResult summarizes one directory upload pass.
type UploadResult struct {
	MasterURL      string   `json:"master_url"`
	BaseURL        string   `json:"base_url"`
	FilesUploaded  int      `json:"files_uploaded"`
	FailedUploads  int      `json:"failed_uploads"`
	TotalSizeBytes int64    `json:"total_size_bytes"`
	Variants       []string `json:"variants"`
	UploadSeconds  float64  `json:"upload_seconds"`
}
