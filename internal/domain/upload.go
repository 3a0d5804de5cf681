package domain

// UploadResult describes a stored upload
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"mimetype"`
}
