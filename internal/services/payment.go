package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/repositories"
)

const (
	eventCheckoutSessionCompleted = "checkout.session.completed"

	metaResumeID      = "resume_id"
	metaDownloadToken = "download_token"
	metaLegacyToken   = "token"
)

type PaymentService interface {
	IssueDownloadToken(resumeID uuid.UUID) (string, error)
	VerifyDownloadToken(token string, resumeID uuid.UUID) error
	// HandleWebhook verifies a Stripe event and records completed checkouts.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ApplicationUnlocked(applicationID uuid.UUID) (bool, error)
}

type downloadClaims struct {
	ResumeID string `json:"resume_id"`
	jwt.RegisteredClaims
}

type paymentService struct {
	resumeRepo    repositories.ResumeRepository
	purchaseRepo  repositories.PurchaseRepository
	tokenSecret   []byte
	tokenTTL      time.Duration
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentService(
	resumeRepo repositories.ResumeRepository,
	purchaseRepo repositories.PurchaseRepository,
	tokenSecret string,
	tokenTTL time.Duration,
	webhookSecret string,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		resumeRepo:    resumeRepo,
		purchaseRepo:  purchaseRepo,
		tokenSecret:   []byte(tokenSecret),
		tokenTTL:      tokenTTL,
		webhookSecret: webhookSecret,
		log:           logger.OrNop(log),
	}
}

func (p *paymentService) IssueDownloadToken(resumeID uuid.UUID) (string, error) {
	now := time.Now()

	claims := &downloadClaims{
		ResumeID: resumeID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if p.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(p.tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}

	return signed, nil
}

func (p *paymentService) VerifyDownloadToken(tokenString string, resumeID uuid.UUID) error {
	if tokenString == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &downloadClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.tokenSecret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.ResumeID != resumeID.String() {
		return fmt.Errorf("%w: token does not belong to resume %s", ErrInvalidToken, resumeID)
	}

	return nil
}

func (p *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if p.webhookSecret == "" {
		return fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if string(event.Type) != eventCheckoutSessionCompleted || event.Data == nil {
		p.log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}

	if resumeID := session.Metadata[metaResumeID]; resumeID != "" {
		token := session.Metadata[metaDownloadToken]
		if token == "" {
			token = session.Metadata[metaLegacyToken]
		}
		if err := p.markResumePaid(resumeID, token); err != nil {
			return err
		}
	}

	if appID := session.Metadata["applicationId"]; appID != "" && session.Mode == stripe.CheckoutSessionModePayment {
		if err := p.recordPurchase(&session, appID); err != nil {
			return err
		}
	}

	return nil
}

func (p *paymentService) ApplicationUnlocked(applicationID uuid.UUID) (bool, error) {
	return p.purchaseRepo.Exists(applicationID, models.PurchaseTypeCV)
}

func (p *paymentService) markResumePaid(rawID, token string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: resume id %q", ErrNotFound, rawID)
	}

	status := models.PaymentStatusPaid
	update := &repositories.ResumeUpdateData{PaymentStatus: &status}
	// Without a checkout token the one stored at parse time stays valid.
	if token != "" {
		update.DownloadToken = &token
	}

	if err := p.resumeRepo.Update(id, update); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: resume %s", ErrNotFound, id)
		}
		return err
	}

	p.log.Info("✅ resume unlocked", zap.String("resume_id", id.String()))
	return nil
}

func (p *paymentService) recordPurchase(session *stripe.CheckoutSession, rawAppID string) error {
	appID, err := uuid.Parse(rawAppID)
	if err != nil {
		return fmt.Errorf("%w: application id %q", ErrNotFound, rawAppID)
	}

	purchaseType := session.Metadata["type"]
	if purchaseType == "" {
		purchaseType = models.PurchaseTypeCV
	}

	paymentIntent := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		paymentIntent = session.PaymentIntent.ID
	}

	purchase := &models.Purchase{
		ID:              uuid.New(),
		SessionID:       session.Metadata["sessionId"],
		ApplicationID:   appID,
		Type:            purchaseType,
		AmountTotal:     session.AmountTotal,
		Currency:        string(session.Currency),
		PaymentIntentID: paymentIntent,
	}
	if err := p.purchaseRepo.Create(purchase); err != nil {
		return err
	}

	p.log.Info("✅ application purchase recorded",
		zap.String("application_id", appID.String()),
		zap.String("type", purchaseType),
	)
	return nil
}

// IsIssuedDownloadToken reports whether token has the shape of a download JWT
// signed by this service. Tokens minted by the checkout are opaque strings.
func IsIssuedDownloadToken(token string) bool {
	claims := &downloadClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ResumeID != ""
}

// constantTimeEqual reports whether a and b match, in constant time.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
