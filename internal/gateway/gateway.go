// Package gateway is the per-message entry point the surrounding event
// handler calls: it gates untrusted senders, maintains the context window
// around each exchange and delegates the middle to the intent router.
package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/manudrel/elara/internal/contextstore"
	"github.com/manudrel/elara/internal/observability"
	"github.com/manudrel/elara/internal/registry"
)

// MessageRouter turns one message into one reply and never fails.
type MessageRouter interface {
	Handle(ctx context.Context, text string, requesterID, chatID int64) string
}

type Gateway struct {
	assistantName string
	reg           *registry.Registry
	contexts      *contextstore.Store
	router        MessageRouter
	metrics       *observability.Metrics
}

func New(assistantName string, reg *registry.Registry, contexts *contextstore.Store, router MessageRouter, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		assistantName: assistantName,
		reg:           reg,
		contexts:      contexts,
		router:        router,
		metrics:       metrics,
	}
}

// Handle processes one inbound message and returns the reply to send.
// ok is false when the message was dropped: the assistant's own echoes, and
// untrusted senders, whose messages never reach the context store or any
// oracle.
func (g *Gateway) Handle(ctx context.Context, userID, chatID int64, senderName, text string) (reply string, ok bool) {
	if senderName == g.assistantName {
		return "", false
	}
	if !g.reg.IsTrustable(userID) {
		log.Printf("gateway: UNAUTHORIZED ACCESS ATTEMPT BY: [%s] - ID: %d", strings.ToUpper(senderName), userID)
		g.metrics.UntrustedDrops.Inc()
		return "", false
	}
	if senderName == "" {
		if u, found := g.reg.GetByID(userID); found {
			senderName = u.Name
		}
	}

	g.contexts.Append(userID, chatID, senderName, text)

	reply = g.router.Handle(ctx, text, userID, chatID)
	reply = strings.TrimSpace(strings.ReplaceAll(reply, g.echoPrefix(), ""))

	g.contexts.Append(userID, chatID, g.assistantName, reply)
	return reply, true
}

// echoPrefix is the speaker marker the model sometimes parrots back from the
// context window.
func (g *Gateway) echoPrefix() string {
	return fmt.Sprintf("$%s says: $", g.assistantName)
}
