package validator

import (
	"fmt"
	"strings"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
)

// Validator validates incoming dashboard requests
type Validator struct {
	cfg config.FileUploadConfig
}

func NewValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateChat validates the chat request. The error messages are part of the
// API contract and returned verbatim to the client.
func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	if req.Message == "" || req.Model == "" || req.StoreID == "" {
		return fmt.Errorf("%w: message, model, storeId", entity.ErrMissingField)
	}

	if !entity.IsSupportedModel(req.Model) {
		return fmt.Errorf("%w. Supported models: %s",
			entity.ErrUnsupportedModel, strings.Join(entity.SupportedModels, ", "))
	}

	for _, turn := range req.History {
		if turn.Role != entity.RoleUser && turn.Role != entity.RoleModel {
			return fmt.Errorf("invalid history role: %q", turn.Role)
		}
	}

	return nil
}

// ValidateCreateStore validates store creation
func (v *Validator) ValidateCreateStore(req *entity.CreateStoreRequest) error {
	if req.DisplayName == "" {
		return fmt.Errorf("displayName is required")
	}
	return nil
}

// ValidateImportFile validates a document import request
func (v *Validator) ValidateImportFile(req *entity.ImportFileRequest) error {
	if req.FileName == "" {
		return fmt.Errorf("fileName is required")
	}
	return nil
}

// ValidateUploadSize checks an uploaded file against the configured limit
func (v *Validator) ValidateUploadSize(size int64) error {
	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", entity.ErrFileTooLarge, size, v.cfg.MaxFileSize)
	}
	return nil
}
