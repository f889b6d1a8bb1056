package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"foundgames-backend-go/internal/discord"
	"foundgames-backend-go/internal/metrics"
	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/storage"
	"foundgames-backend-go/internal/verification"
	"foundgames-backend-go/internal/whitelist"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	MessageApproved      = "Your details were automatically verified and you are now authenticated to join our Minecraft server."
	MessageManualReview  = "We couldn't automatically verify your residency. Please provide a photo of your lease confirmation."
	MessagePending       = "Your manual verification request has been submitted and is being reviewed."
	MessageNotInDiscord  = "We couldn't find you in our Discord server. Please join before continuing."
	documentPrefix       = "lease-documents"
	verificationColumns  = `id, first_name, last_name, building, room_number, email, discord_username, minecraft_username, status, document_key, decision_note, reviewed_by, submitted_at, updated_at`
	maxVerificationsList = 500
)

// MembershipChecker reports whether a username belongs to the community
// Discord server.
type MembershipChecker interface {
	MemberExists(ctx context.Context, username string) (bool, error)
}

type VerificationService struct {
	DB        *sqlx.DB
	Decider   verification.Decider
	Discord   MembershipChecker
	Documents storage.DocumentStore
	Whitelist whitelist.Publisher
	Events    *EventHub
	Log       *zap.Logger
}

type SubmitResult struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	State   string `json:"state"`
	Message string `json:"message"`
}

type StatusView struct {
	Status            string    `json:"status"`
	MinecraftUsername string    `json:"minecraftUsername"`
	SubmittedAt       time.Time `json:"submittedAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	DecisionNote      *string   `json:"decisionNote,omitempty"`
}

type VerificationFilter struct {
	Status   string
	Building string
	Search   string
}

// DiscordError turns a discord client error into the message residents see.
func DiscordError(err error) error {
	var apiErr *discord.APIError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, discord.ErrUsernameRequired):
		return ErrBadRequest("Username is required")
	case errors.Is(err, discord.ErrNotConfigured):
		if strings.Contains(err.Error(), "guild") {
			return ErrConfig("Discord server ID is not properly configured")
		}
		return ErrConfig("Discord verification is not properly configured")
	case errors.Is(err, discord.ErrUnauthorized):
		return ErrUpstream("Discord authentication failed. Please contact an administrator.")
	case errors.As(err, &apiErr):
		return ErrUpstream(fmt.Sprintf("Discord API error: %d", apiErr.StatusCode))
	default:
		return ErrUpstream("Failed to check Discord username")
	}
}

// CheckDiscord looks up a Discord username and records the outcome.
func (s *VerificationService) CheckDiscord(ctx context.Context, username string) (bool, error) {
	if s.Discord == nil {
		return false, ErrConfig("Discord verification is not properly configured")
	}
	exists, err := s.Discord.MemberExists(ctx, username)
	switch {
	case err != nil:
		metrics.RecordDiscordLookup("error")
		s.logger().Warn("discord lookup failed", zap.String("username", username), zap.Error(err))
		return false, DiscordError(err)
	case exists:
		metrics.RecordDiscordLookup("found")
	default:
		metrics.RecordDiscordLookup("missing")
	}
	return exists, nil
}

// Submit runs automatic verification for an applicant and stores the
// request. Decider failures send the applicant to manual verification.
func (s *VerificationService) Submit(ctx context.Context, in verification.Applicant) (SubmitResult, error) {
	applicant := in.Normalize()
	if err := applicant.Validate(); err != nil {
		return SubmitResult{}, err
	}
	exists, err := s.CheckDiscord(ctx, applicant.DiscordUsername)
	if err != nil {
		return SubmitResult{}, err
	}
	if !exists {
		return SubmitResult{}, ErrBadRequest(MessageNotInDiscord)
	}

	log := s.logger().With(zap.String("email", applicant.Email), zap.String("building", applicant.Building))
	flow := verification.NewFlow()
	if err := flow.Submit(); err != nil {
		return SubmitResult{}, err
	}
	decision, err := s.Decider.Decide(ctx, applicant)
	switch {
	case err != nil:
		log.Warn("automatic verification failed, routing to manual review", zap.Error(err))
		err = flow.RequireManual()
	case decision.Approved:
		err = flow.Approve()
	default:
		log.Info("automatic verification declined", zap.String("reason", decision.Reason))
		err = flow.RequireManual()
	}
	if err != nil {
		return SubmitResult{}, err
	}
	status, _ := flow.PersistedStatus()

	now := time.Now().UTC()
	req := models.VerificationRequest{
		ID:                uuid.NewString(),
		FirstName:         applicant.FirstName,
		LastName:          applicant.LastName,
		Building:          verification.Slugify(applicant.Building),
		RoomNumber:        applicant.RoomNumber,
		Email:             applicant.Email,
		DiscordUsername:   applicant.DiscordUsername,
		MinecraftUsername: applicant.MinecraftUsername,
		Status:            status,
		SubmittedAt:       now,
		UpdatedAt:         now,
	}
	if decision.Reason != "" {
		req.DecisionNote = &decision.Reason
	}
	if _, err := s.DB.NamedExecContext(ctx, `
INSERT INTO verification_requests (id, first_name, last_name, building, room_number, email, discord_username,
  minecraft_username, status, decision_note, submitted_at, updated_at)
VALUES (:id, :first_name, :last_name, :building, :room_number, :email, :discord_username,
  :minecraft_username, :status, :decision_note, :submitted_at, :updated_at)
`, req); err != nil {
		_ = flow.Fail()
		return SubmitResult{}, WrapError(err, "store verification request")
	}

	metrics.RecordVerification(status)
	s.Events.Publish(EventVerificationCreated, map[string]string{"id": req.ID, "status": status})
	if status == verification.StatusApproved {
		s.publishWhitelist(ctx, whitelist.EventApproved, req)
	}
	log.Info("verification submitted", zap.String("id", req.ID), zap.String("status", status))

	return SubmitResult{ID: req.ID, Status: status, State: string(flow.State()), Message: messageFor(status)}, nil
}

// AttachDocument stores a lease document for a request awaiting manual
// verification and moves it to pending review.
func (s *VerificationService) AttachDocument(ctx context.Context, id, filename, contentType string, size int64, body io.Reader) (SubmitResult, error) {
	if s.Documents == nil {
		return SubmitResult{}, ErrConfig("Document storage is not configured")
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	flow, err := verification.ResumeFlow(req.Status)
	if err != nil || flow.SubmitDocument() != nil {
		return SubmitResult{}, ErrBadRequest("This verification request is not awaiting a document")
	}

	key := storage.NewKey(documentPrefix+"/"+req.ID, filename)
	if err := s.Documents.Put(ctx, key, body, size, contentType); err != nil {
		_ = flow.Fail()
		if errors.Is(err, storage.ErrEmptyObject) {
			return SubmitResult{}, ErrBadRequest("Please upload a document to verify your lease")
		}
		return SubmitResult{}, WrapError(err, "store lease document")
	}
	if err := flow.DocumentAccepted(); err != nil {
		return SubmitResult{}, err
	}
	status, _ := flow.PersistedStatus()

	res, err := s.DB.ExecContext(ctx, `
UPDATE verification_requests SET status = $1, document_key = $2, updated_at = $3
WHERE id = $4 AND status = $5`, status, key, time.Now().UTC(), req.ID, verification.StatusManualReview)
	if err != nil {
		_ = s.Documents.Delete(ctx, key)
		return SubmitResult{}, WrapError(err, "update verification request")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = s.Documents.Delete(ctx, key)
		return SubmitResult{}, ErrConflict("This verification request was updated by someone else")
	}
	if req.DocumentKey != nil && *req.DocumentKey != key {
		_ = s.Documents.Delete(ctx, *req.DocumentKey)
	}

	metrics.RecordVerification(status)
	s.Events.Publish(EventVerificationUpdated, map[string]string{"id": req.ID, "status": status})
	return SubmitResult{ID: req.ID, Status: status, State: string(flow.State()), Message: messageFor(status)}, nil
}

func (s *VerificationService) Get(ctx context.Context, id string) (models.VerificationRequest, error) {
	var req models.VerificationRequest
	err := s.DB.GetContext(ctx, &req, `SELECT `+verificationColumns+` FROM verification_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VerificationRequest{}, ErrNotFound("Verification request not found")
	}
	return req, err
}

// StatusByEmail reports the latest request made with the email address.
func (s *VerificationService) StatusByEmail(ctx context.Context, email string) (StatusView, error) {
	email = normalizeEmail(email)
	if email == "" {
		return StatusView{}, ErrBadRequest("Please enter a valid email address.")
	}
	var req models.VerificationRequest
	err := s.DB.GetContext(ctx, &req, `
SELECT `+verificationColumns+` FROM verification_requests
WHERE lower(email) = $1
ORDER BY submitted_at DESC
LIMIT 1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusView{}, ErrNotFound("No verification request found for this email")
	}
	if err != nil {
		return StatusView{}, err
	}
	view := StatusView{
		Status:            req.Status,
		MinecraftUsername: req.MinecraftUsername,
		SubmittedAt:       req.SubmittedAt,
		UpdatedAt:         req.UpdatedAt,
	}
	if req.Status == verification.StatusRejected {
		view.DecisionNote = req.DecisionNote
	}
	return view, nil
}

func (s *VerificationService) List(ctx context.Context, f VerificationFilter) ([]models.VerificationRequest, error) {
	where := []string{}
	args := []interface{}{}
	if st := strings.TrimSpace(f.Status); st != "" && st != "all" {
		args = append(args, st)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if b := strings.TrimSpace(f.Building); b != "" && b != "all" {
		args = append(args, verification.Slugify(b))
		where = append(where, fmt.Sprintf("building = $%d", len(args)))
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(lower(first_name || ' ' || last_name) LIKE $%d OR lower(email) LIKE $%d OR lower(minecraft_username) LIKE $%d OR lower(discord_username) LIKE $%d)",
			n, n, n, n))
	}
	query := `SELECT ` + verificationColumns + ` FROM verification_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, maxVerificationsList)
	query += fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT $%d", len(args))

	items := []models.VerificationRequest{}
	err := s.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

// Review records an admin decision on a pending or manual-review request.
func (s *VerificationService) Review(ctx context.Context, reviewerID, id string, approve bool, note string) (models.VerificationRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return models.VerificationRequest{}, err
	}
	if !verification.CanReview(req.Status) {
		return models.VerificationRequest{}, ErrBadRequest("Only pending or manual-review requests can be reviewed")
	}
	status := verification.StatusRejected
	if approve {
		status = verification.StatusApproved
	}
	var notePtr *string
	if n := strings.TrimSpace(note); n != "" {
		notePtr = &n
	}
	res, err := s.DB.ExecContext(ctx, `
UPDATE verification_requests SET status = $1, decision_note = $2, reviewed_by = $3, updated_at = $4
WHERE id = $5 AND status = $6`, status, notePtr, reviewerID, time.Now().UTC(), id, req.Status)
	if err != nil {
		return models.VerificationRequest{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.VerificationRequest{}, ErrConflict("This verification request was updated by someone else")
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return models.VerificationRequest{}, err
	}

	metrics.RecordVerification(status)
	s.Events.Publish(EventVerificationUpdated, map[string]string{"id": id, "status": status})
	if approve {
		s.publishWhitelist(ctx, whitelist.EventApproved, updated)
	}
	s.logger().Info("verification reviewed", zap.String("id", id), zap.String("status", status), zap.String("reviewer", reviewerID))
	return updated, nil
}

// OpenDocument returns the stored lease document and a download name.
func (s *VerificationService) OpenDocument(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if s.Documents == nil {
		return nil, "", ErrConfig("Document storage is not configured")
	}
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if req.DocumentKey == nil {
		return nil, "", ErrNotFound("No document uploaded for this request")
	}
	rc, err := s.Documents.Open(ctx, *req.DocumentKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNotFound("Document not found")
	}
	if err != nil {
		return nil, "", err
	}
	return rc, "lease-" + req.ID + path.Ext(*req.DocumentKey), nil
}

func (s *VerificationService) publishWhitelist(ctx context.Context, eventType string, req models.VerificationRequest) {
	if s.Whitelist == nil {
		return
	}
	err := s.Whitelist.Publish(ctx, whitelist.Event{
		Type:              eventType,
		RequestID:         req.ID,
		MinecraftUsername: req.MinecraftUsername,
		DiscordUsername:   req.DiscordUsername,
		Building:          req.Building,
		OccurredAt:        time.Now().UTC(),
	})
	if err != nil {
		s.logger().Error("whitelist publish failed", zap.String("id", req.ID), zap.Error(err))
	}
}

func (s *VerificationService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func messageFor(status string) string {
	switch status {
	case verification.StatusApproved:
		return MessageApproved
	case verification.StatusManualReview:
		return MessageManualReview
	case verification.StatusPending:
		return MessagePending
	}
	return ""
}
