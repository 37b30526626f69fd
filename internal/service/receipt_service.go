package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/repository/storage"
)

const (
	// MaxReceiptSize caps uploads at 5MB
	MaxReceiptSize = 5 * 1024 * 1024
	// MaxReceiptWidth is the width receipts are downscaled to
	MaxReceiptWidth = 1200
	// receiptJPEGQuality is the encode quality for stored receipts
	receiptJPEGQuality = 85
	// receiptURLExpiry is how long presigned receipt URLs stay valid
	receiptURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge       = errors.New("file too large. Maximum size is 5MB")
	ErrReceiptInvalidFormat  = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptInvalidData    = errors.New("invalid image data")
	ErrReceiptNotFound       = errors.New("transaction has no receipt")
	ErrReceiptsNotConfigured = errors.New("receipt storage not configured")
)

// allowedReceiptExtensions maps extensions to content types
var allowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptService attaches receipt images to transactions. Images are
// validated, downscaled and stored in object storage; the transaction
// row only keeps the object path.
type ReceiptService struct {
	storage         storage.ReceiptRepository
	transactionRepo domain.TransactionRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, transactionRepo domain.TransactionRepository) *ReceiptService {
	return &ReceiptService{storage: storage, transactionRepo: transactionRepo}
}

// Enabled indicates whether receipt storage is configured.
func (s *ReceiptService) Enabled() bool {
	return s != nil && s.storage != nil
}

// Attach validates and stores a receipt image for an owned transaction,
// replacing any previous receipt.
func (s *ReceiptService) Attach(ctx context.Context, userID, transactionID uuid.UUID, data []byte, filename string) (*domain.Transaction, error) {
	if !s.Enabled() {
		return nil, ErrReceiptsNotConfigured
	}

	transaction, err := s.transactionRepo.GetByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	img, err := decodeReceipt(data, filename)
	if err != nil {
		return nil, err
	}

	if img.Bounds().Dx() > MaxReceiptWidth {
		img = imaging.Resize(img, MaxReceiptWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: receiptJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}

	objectPath := fmt.Sprintf("%s/receipts/%s/%s.jpg", userID, transactionID, uuid.New())
	path, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	old := transaction.ReceiptPath
	if err := s.transactionRepo.SetReceiptPath(ctx, userID, transactionID, &path); err != nil {
		// best-effort cleanup of the orphaned upload
		_ = s.storage.Delete(ctx, path)
		return nil, err
	}
	if old != nil {
		_ = s.storage.Delete(ctx, *old)
	}

	transaction.ReceiptPath = &path
	return transaction, nil
}

// URL returns a temporary presigned URL for a transaction's receipt.
func (s *ReceiptService) URL(ctx context.Context, userID, transactionID uuid.UUID) (string, error) {
	if !s.Enabled() {
		return "", ErrReceiptsNotConfigured
	}

	transaction, err := s.transactionRepo.GetByID(ctx, userID, transactionID)
	if err != nil {
		return "", err
	}
	if transaction.ReceiptPath == nil {
		return "", ErrReceiptNotFound
	}

	return s.storage.PresignedURL(ctx, *transaction.ReceiptPath, receiptURLExpiry)
}

// Detach removes a transaction's receipt from storage and clears the path.
func (s *ReceiptService) Detach(ctx context.Context, userID, transactionID uuid.UUID) error {
	if !s.Enabled() {
		return ErrReceiptsNotConfigured
	}

	transaction, err := s.transactionRepo.GetByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if transaction.ReceiptPath == nil {
		return ErrReceiptNotFound
	}

	if err := s.transactionRepo.SetReceiptPath(ctx, userID, transactionID, nil); err != nil {
		return err
	}
	_ = s.storage.Delete(ctx, *transaction.ReceiptPath)
	return nil
}

// decodeReceipt validates size, extension and image data.
func decodeReceipt(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedReceiptExtensions[ext]; !ok {
		return nil, ErrReceiptInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrReceiptInvalidData
	}
	return img, nil
}
