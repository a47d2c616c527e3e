package entity

import "strings"

// FileNamePrefix is the namespace the upstream service uses for raw file
// resource names.
const FileNamePrefix = "files/"

// NormalizeFileName prepends the file namespace prefix unless the id already
// carries it.
func NormalizeFileName(fileID string) string {
	if strings.HasPrefix(fileID, FileNamePrefix) {
		return fileID
	}
	return FileNamePrefix + fileID
}

// File is an uploaded file held by the upstream service. It is raw storage
// until imported into a store as a Document.
type File struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	SizeBytes   string `json:"sizeBytes,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
	URI         string `json:"uri,omitempty"`
	State       string `json:"state,omitempty"`
}

type ListFilesResponse struct {
	Files []File `json:"files"`
}
