package validator

import (
	"testing"

	"github.com/aminanvary/Gemini-File-Search/internal/config"
	"github.com/aminanvary/Gemini-File-Search/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return NewValidator(config.FileUploadConfig{
		MaxFileSize:   1024,
		MaxUploadSize: 2048,
	})
}

func TestValidateChat(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateChat(&entity.ChatRequest{
		Message: "hello",
		Model:   "gemini-2.5-flash",
		StoreID: "my-store",
	})
	assert.NoError(t, err)
}

func TestValidateChatMissingFields(t *testing.T) {
	v := newTestValidator()

	cases := []entity.ChatRequest{
		{Model: "gemini-2.5-flash", StoreID: "s"},
		{Message: "hi", StoreID: "s"},
		{Message: "hi", Model: "gemini-2.5-flash"},
		{},
	}

	for _, req := range cases {
		err := v.ValidateChat(&req)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrMissingField)
		assert.Equal(t, "Missing required fields: message, model, storeId", err.Error())
	}
}

func TestValidateChatUnsupportedModel(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateChat(&entity.ChatRequest{
		Message: "hi",
		Model:   "gpt-4",
		StoreID: "s",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnsupportedModel)
	assert.Equal(t, "Invalid model. Supported models: gemini-2.5-flash, gemini-3-flash-preview", err.Error())
}

func TestValidateChatInvalidHistoryRole(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateChat(&entity.ChatRequest{
		Message: "hi",
		Model:   "gemini-2.5-flash",
		StoreID: "s",
		History: []entity.ChatTurn{
			{Role: "assistant", Parts: []entity.TurnPart{{Text: "x"}}},
		},
	})
	assert.Error(t, err)
}

func TestValidateCreateStore(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateCreateStore(&entity.CreateStoreRequest{DisplayName: "Docs"}))

	err := v.ValidateCreateStore(&entity.CreateStoreRequest{})
	require.Error(t, err)
	assert.Equal(t, "displayName is required", err.Error())
}

func TestValidateImportFile(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateImportFile(&entity.ImportFileRequest{FileName: "files/abc"}))

	err := v.ValidateImportFile(&entity.ImportFileRequest{})
	require.Error(t, err)
	assert.Equal(t, "fileName is required", err.Error())
}

func TestValidateUploadSize(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateUploadSize(1024))

	err := v.ValidateUploadSize(1025)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)
}
