package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pilketos/internal/model"
	"pilketos/internal/repository"
	"pilketos/internal/storage"
)

type PhotoSlot = model.PhotoSlot

const (
	SlotChairman     = model.SlotChairman
	SlotViceChairman = model.SlotViceChairman
)

// photoKey is the object key of a candidate photo.
func photoKey(candidateID string, slot PhotoSlot) string {
	return "candidates/" + candidateID + "/" + string(slot)
}

// PhotoURL is the public path that serves a candidate photo.
func PhotoURL(candidateID string, slot PhotoSlot) string {
	return "/candidates/" + candidateID + "/photos/" + string(slot)
}

const photoLinkExpiry = 15 * time.Minute

// CandidateInput holds the editable text fields of a candidate pair.
type CandidateInput struct {
	Number           int    `json:"candidate_number"`
	ChairmanName     string `json:"chairman_name"`
	ViceChairmanName string `json:"vice_chairman_name"`
	Vision           string `json:"vision"`
	Mission          string `json:"mission"`
}

func (in CandidateInput) validate() (CandidateInput, error) {
	out := CandidateInput{
		Number:           in.Number,
		ChairmanName:     strings.TrimSpace(in.ChairmanName),
		ViceChairmanName: strings.TrimSpace(in.ViceChairmanName),
		Vision:           strings.TrimSpace(in.Vision),
		Mission:          strings.TrimSpace(in.Mission),
	}
	switch {
	case out.Number <= 0:
		return out, fmt.Errorf("%w: candidate number must be positive", ErrValidation)
	case out.ChairmanName == "":
		return out, fmt.Errorf("%w: chairman name is required", ErrValidation)
	case out.ViceChairmanName == "":
		return out, fmt.Errorf("%w: vice chairman name is required", ErrValidation)
	}
	return out, nil
}

// CandidateService manages the ballot's candidate pairs and their photos.
type CandidateService interface {
	// List returns every candidate ordered by candidate number.
	List(ctx context.Context) ([]model.Candidate, error)
	Get(ctx context.Context, id string) (*model.Candidate, error)
	Create(ctx context.Context, in CandidateInput) (*model.Candidate, error)
	// Update replaces the text fields; photos are kept.
	Update(ctx context.Context, id string, in CandidateInput) (*model.Candidate, error)
	// Delete removes a candidate without votes, then its stored photos.
	Delete(ctx context.Context, id string) error

	// UploadPhoto stores the photo object and points the candidate's photo field at it.
	UploadPhoto(ctx context.Context, id string, slot PhotoSlot, r io.Reader, contentType string, size int64) (*model.Candidate, error)
	// Photo streams a stored photo. The caller closes the reader.
	Photo(ctx context.Context, id string, slot PhotoSlot) (io.ReadCloser, storage.ObjectInfo, error)
	// PhotoLink returns a short-lived direct download URL for a stored photo.
	PhotoLink(ctx context.Context, id string, slot PhotoSlot) (string, error)
}

type candidateService struct {
	repo   repository.CandidateRepository
	store  storage.Storage
	logger *slog.Logger
	now    func() time.Time
}

func NewCandidateService(repo repository.CandidateRepository, store storage.Storage, logger *slog.Logger) CandidateService {
	return &candidateService{
		repo:   repo,
		store:  store,
		logger: logger.With("component", "candidates"),
		now:    time.Now,
	}
}

func (s *candidateService) List(ctx context.Context) ([]model.Candidate, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Candidate{}
	}
	return items, nil
}

func (s *candidateService) Get(ctx context.Context, id string) (*model.Candidate, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *candidateService) Create(ctx context.Context, in CandidateInput) (*model.Candidate, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c, err := s.repo.Create(ctx, &model.Candidate{
		ID:               uuid.NewString(),
		Number:           in.Number,
		ChairmanName:     in.ChairmanName,
		ViceChairmanName: in.ViceChairmanName,
		Vision:           in.Vision,
		Mission:          in.Mission,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	s.logger.Info("candidate_created", "candidate_id", c.ID, "candidate_number", c.Number)
	return c, nil
}

func (s *candidateService) Update(ctx context.Context, id string, in CandidateInput) (*model.Candidate, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Update(ctx, &model.Candidate{
		ID:               id,
		Number:           in.Number,
		ChairmanName:     in.ChairmanName,
		ViceChairmanName: in.ViceChairmanName,
		Vision:           in.Vision,
		Mission:          in.Mission,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrCandidateNotFound
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	return out, nil
}

func (s *candidateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrCandidateNotFound
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return ErrCandidateHasVotes
		}
		return fmt.Errorf("delete candidate: %w", err)
	}

	// The row is gone; leftover objects are only logged.
	for _, slot := range []PhotoSlot{SlotChairman, SlotViceChairman} {
		if err := s.store.Delete(ctx, photoKey(id, slot)); err != nil {
			s.logger.Warn("candidate_photo_cleanup_failed", "candidate_id", id, "slot", string(slot), "error", err.Error())
		}
	}
	s.logger.Info("candidate_deleted", "candidate_id", id)
	return nil
}

func (s *candidateService) UploadPhoto(ctx context.Context, id string, slot PhotoSlot, r io.Reader, contentType string, size int64) (*model.Candidate, error) {
	if !slot.Valid() {
		return nil, ErrInvalidPhotoSlot
	}
	if r == nil {
		return nil, fmt.Errorf("%w: photo is required", ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: photo must be an image", ErrValidation)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if _, err := s.store.Put(ctx, photoKey(id, slot), r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"candidate-id": id, "slot": string(slot)},
	}); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	// Writes only this slot's column.
	c, err := s.repo.SetPhoto(ctx, id, slot, PhotoURL(id, slot))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("set photo: %w", err)
	}
	s.logger.Info("candidate_photo_uploaded", "candidate_id", id, "slot", string(slot))
	return c, nil
}

func (s *candidateService) Photo(ctx context.Context, id string, slot PhotoSlot) (io.ReadCloser, storage.ObjectInfo, error) {
	if !slot.Valid() {
		return nil, storage.ObjectInfo{}, ErrInvalidPhotoSlot
	}
	rc, info, err := s.store.Get(ctx, photoKey(id, slot))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ObjectInfo{}, ErrPhotoNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("get photo: %w", err)
	}
	return rc, info, nil
}

func (s *candidateService) PhotoLink(ctx context.Context, id string, slot PhotoSlot) (string, error) {
	if !slot.Valid() {
		return "", ErrInvalidPhotoSlot
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	stored := c.ChairmanPhoto
	if slot == SlotViceChairman {
		stored = c.ViceChairmanPhoto
	}
	if stored == "" {
		return "", ErrPhotoNotFound
	}
	link, err := s.store.PresignGet(ctx, photoKey(id, slot), photoLinkExpiry)
	if err != nil {
		return "", fmt.Errorf("presign photo: %w", err)
	}
	return link, nil
}
