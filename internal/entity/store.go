package entity

import "strings"

// StoreNamePrefix is the namespace the upstream service uses for file-search
// store resource names.
const StoreNamePrefix = "fileSearchStores/"

// NormalizeStoreName prepends the store namespace prefix unless the id already
// carries it. Already-namespaced ids pass through unchanged.
func NormalizeStoreName(storeID string) string {
	if strings.HasPrefix(storeID, StoreNamePrefix) {
		return storeID
	}
	return StoreNamePrefix + storeID
}

// Store is a named collection of imported documents usable as a retrieval
// scope for chat.
type Store struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

// Document is a file that has been imported into a store. Distinct from an
// uploaded File, which is raw storage until imported.
type Document struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

// Operation is a long-running upstream operation, polled until Done.
type Operation struct {
	Name  string          `json:"name"`
	Done  bool            `json:"done"`
	Error *OperationError `json:"error,omitempty"`
}

type OperationError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type CreateStoreRequest struct {
	DisplayName string `json:"displayName"`
}

type ImportFileRequest struct {
	FileName string `json:"fileName"`
}

type ListStoresResponse struct {
	Stores []Store `json:"stores"`
}

type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
}

type ImportFileResponse struct {
	Success   bool       `json:"success"`
	Operation *Operation `json:"operation"`
}

// ImportTimeoutResponse is returned with 202 Accepted when an import
// operation outlives the polling window. The client can keep polling with
// the operation name.
type ImportTimeoutResponse struct {
	Error         string `json:"error"`
	OperationName string `json:"operationName"`
}
