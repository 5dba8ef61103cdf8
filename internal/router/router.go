// Package router turns a classified message into a single user-facing
// response, invoking authorization and registry mutations for the
// state-changing intents and the generation oracle for everything else.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manudrel/elara/internal/auth"
	"github.com/manudrel/elara/internal/contextstore"
	"github.com/manudrel/elara/internal/groq"
	"github.com/manudrel/elara/internal/observability"
	"github.com/manudrel/elara/internal/persona"
	"github.com/manudrel/elara/internal/registry"
)

// Fixed user-facing strings. Failures never surface raw errors.
const (
	msgInsufficientRoleData = "Insufficient data for a role change."
	msgGenerationTrouble    = "Sorry, I am having trouble answering right now."
	msgProcessingError      = "An error occurred while processing your message."
	msgModelUnreachable     = "I could not reach my language model. Please try again in a moment."
	msgModelStatus          = "My language model reported an error. Please try again in a moment."
)

// ContextSource provides the prior dialogue turns for generation.
type ContextSource interface {
	Snapshot(userID, chatID int64) []contextstore.Turn
}

// Router dispatches classified intents. All collaborator failures are
// contained here; Handle always returns something sendable.
type Router struct {
	reg        *registry.Registry
	engine     *auth.Engine
	contexts   ContextSource
	classifier groq.Classifier
	generator  groq.Generator
	persona    *persona.Persona
	metrics    *observability.Metrics
}

func New(
	reg *registry.Registry,
	engine *auth.Engine,
	contexts ContextSource,
	classifier groq.Classifier,
	generator groq.Generator,
	p *persona.Persona,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		reg:        reg,
		engine:     engine,
		contexts:   contexts,
		classifier: classifier,
		generator:  generator,
		persona:    p,
		metrics:    metrics,
	}
}

// Handle classifies text and routes it to the matching handler. Any
// unexpected failure is logged and converted to a fixed fallback string.
func (r *Router) Handle(ctx context.Context, text string, requesterID, chatID int64) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("router: panic handling message from %d: %v", requesterID, rec)
			reply = msgProcessingError
		}
	}()

	cls, err := r.classifier.Classify(ctx, text)
	if err != nil {
		// Best-effort oracle: treat the message as plain chat.
		log.Printf("router: classification failed, defaulting to chat: %v", err)
		r.metrics.OracleErrors.WithLabelValues("classifier", string(groq.KindOf(err))).Inc()
		cls = groq.Classification{Intent: groq.IntentChat}
	}
	r.metrics.MessagesTotal.WithLabelValues(string(cls.Intent)).Inc()

	switch cls.Intent {
	case groq.IntentRoleChange:
		return r.handleRoleChange(ctx, cls, requesterID)
	case groq.IntentMoodChange:
		return r.handleMoodChange(ctx, cls, text, requesterID, chatID)
	default:
		return r.generateReply(ctx, text, requesterID, chatID)
	}
}

func (r *Router) handleRoleChange(ctx context.Context, cls groq.Classification, requesterID int64) string {
	target := strings.TrimSpace(cls.Target)
	newRole := strings.TrimSpace(cls.NewRole)
	if target == "" || newRole == "" {
		return msgInsufficientRoleData
	}

	tgt, ok := r.resolveTarget(requesterID, target)
	if !ok {
		return fmt.Sprintf("I could not find any user matching %s.", target)
	}

	dec := r.engine.DecideRoleChange(requesterID, tgt, newRole)
	r.observeDecision("role_change", dec)
	if !dec.Allowed {
		switch dec.Reason {
		case auth.ReasonInvalidRole:
			return fmt.Sprintf("%s is not a valid role.", newRole)
		case auth.ReasonRequesterNotFound:
			return "I could not find your user record."
		default:
			return fmt.Sprintf("You do not have permission to change %s's role.", tgt.Name)
		}
	}

	if err := r.reg.Update(ctx, tgt.ID, registry.Partial{Role: &dec.Role}); err != nil {
		log.Printf("router: role update for %d failed: %v", tgt.ID, err)
		return msgProcessingError
	}
	return fmt.Sprintf("**%s**'s role was changed to **%s**.", tgt.Name, dec.Role)
}

// handleMoodChange computes the mutation outcome first, then always weaves
// it into a generated reply. A successful mood change is never confirmed
// directly; the bracketed summary only colors the model's next answer.
func (r *Router) handleMoodChange(ctx context.Context, cls groq.Classification, text string, requesterID, chatID int64) string {
	outcome := r.applyMoodChange(ctx, cls, requesterID)
	annotated := fmt.Sprintf("[%s] %s", outcome.summary(), text)
	return r.generateReply(ctx, annotated, requesterID, chatID)
}

type moodOutcomeKind int

const (
	moodApplied moodOutcomeKind = iota
	moodPermissionDenied
	moodRequesterNotFound
	moodTargetNotFound
	moodPersistFailed
)

// moodOutcome is the structured result of a mood mutation attempt,
// separated from how it is presented.
type moodOutcome struct {
	kind       moodOutcomeKind
	targetName string
	self       bool
	mood       registry.Mood
}

func (o moodOutcome) summary() string {
	switch o.kind {
	case moodApplied:
		if o.self {
			return fmt.Sprintf("Your mood was updated to %s.", o.mood)
		}
		return fmt.Sprintf("%s's mood was updated to %s.", o.targetName, o.mood)
	case moodPermissionDenied:
		return "You do not have permission to change moods."
	case moodRequesterNotFound:
		return "Requesting user not found."
	case moodTargetNotFound:
		return fmt.Sprintf("User %s not found.", o.targetName)
	default:
		return "The mood change could not be saved."
	}
}

func (r *Router) applyMoodChange(ctx context.Context, cls groq.Classification, requesterID int64) moodOutcome {
	dec := r.engine.DecideMoodChange(requesterID)
	r.observeDecision("mood_change", dec)
	if !dec.Allowed {
		if dec.Reason == auth.ReasonRequesterNotFound {
			return moodOutcome{kind: moodRequesterNotFound}
		}
		return moodOutcome{kind: moodPermissionDenied}
	}

	mood, ok := registry.ParseMood(cls.NewMood)
	if !ok {
		mood = registry.MoodNeutral
	}

	token := strings.TrimSpace(cls.Target)
	self := token == "" || IsSelfReference(token)
	var tgt registry.User
	if self {
		tgt, ok = r.reg.GetByID(requesterID)
	} else {
		tgt, ok = r.resolveTarget(requesterID, token)
	}
	if !ok {
		return moodOutcome{kind: moodTargetNotFound, targetName: token}
	}

	if err := r.reg.Update(ctx, tgt.ID, registry.Partial{Mood: &mood}); err != nil {
		log.Printf("router: mood update for %d failed: %v", tgt.ID, err)
		return moodOutcome{kind: moodPersistFailed}
	}
	return moodOutcome{kind: moodApplied, targetName: tgt.Name, self: tgt.ID == requesterID, mood: mood}
}

// resolveTarget maps a raw target token to a registry record: self tokens
// resolve to the requester, mention-shaped tokens by id, everything else by
// case-insensitive name.
func (r *Router) resolveTarget(requesterID int64, token string) (registry.User, bool) {
	token = strings.TrimSpace(token)
	if token == "" || IsSelfReference(token) {
		return r.reg.GetByID(requesterID)
	}
	if id, ok := ParseMentionID(token); ok {
		return r.reg.GetByID(id)
	}
	return r.reg.FindByName(token)
}

// generateReply builds the persona prompt for the requester and forwards the
// prompt plus prior turns to the generation oracle. Failure kinds map to
// distinct fixed messages.
func (r *Router) generateReply(ctx context.Context, prompt string, requesterID, chatID int64) string {
	systemPrompt := r.persona.SystemPrompt(r.reg.GetMood(requesterID), r.reg.GetRole(requesterID))
	turns := r.contexts.Snapshot(requesterID, chatID)

	start := time.Now()
	reply, err := r.generator.Generate(ctx, systemPrompt, turns, prompt)
	r.metrics.ObserveGenerationLatency(time.Since(start))
	if err != nil {
		kind := groq.KindOf(err)
		log.Printf("router: generation failed (%s): %v", kind, err)
		r.metrics.OracleErrors.WithLabelValues("generator", string(kind)).Inc()
		switch kind {
		case groq.KindConnectivity:
			return msgModelUnreachable
		case groq.KindStatus:
			return msgModelStatus
		default:
			return msgGenerationTrouble
		}
	}
	return reply
}

func (r *Router) observeDecision(operation string, dec auth.Decision) {
	outcome := "allowed"
	if !dec.Allowed {
		outcome = string(dec.Reason)
	}
	r.metrics.AuthzDecisions.WithLabelValues(operation, outcome).Inc()
}
