// Package session holds the state machine for one image-analysis session.
// The controller is a single-writer container: the TUI mutates it only from
// the Bubble Tea update loop, and network completions are applied through
// the Resolve methods, which enforce the stale-response guard.
package session

import (
	"strings"

	"github.com/dockerlens/dockerlens/pkg/models"
)

// Kind identifies one of the secondary operations unlocked by a successful
// primary analysis.
type Kind int

const (
	KindDockerfile Kind = iota
	KindOptimize
	KindFileTree
	KindChat
)

// kinds in display order.
var kinds = [...]Kind{KindDockerfile, KindOptimize, KindFileTree, KindChat}

func (k Kind) String() string {
	switch k {
	case KindDockerfile:
		return "dockerfile"
	case KindOptimize:
		return "optimize"
	case KindFileTree:
		return "files"
	case KindChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Status is the lifecycle of a secondary slot.
type Status int

const (
	StatusUntriggered Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

// Slot is the state of one secondary operation. Payload is only set when
// Status is StatusSucceeded, Err only when StatusFailed; resolution always
// replaces the slot as a whole so observers never see a half-updated slot.
type Slot struct {
	Status  Status
	Payload interface{}
	Err     string
}

// ChatFallbackReply is appended as the assistant turn when the chat call
// fails. The user's own message is never retracted.
const ChatFallbackReply = "Sorry, I couldn't reach the analysis service. Your message is kept in the log; please try again."

// Controller owns the state of the current analysis session.
type Controller struct {
	imageRef       string
	primaryPending bool
	primary        *models.AnalysisResult
	primaryErr     string
	slots          map[Kind]Slot
	chatLog        []models.ChatMessage
}

// New returns an empty controller with every slot untriggered.
func New() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// Reset clears the session to its initial empty state: no image reference,
// no results, no chat log.
func (c *Controller) Reset() {
	c.imageRef = ""
	c.primaryPending = false
	c.primary = nil
	c.primaryErr = ""
	c.slots = make(map[Kind]Slot, len(kinds))
	for _, k := range kinds {
		c.slots[k] = Slot{Status: StatusUntriggered}
	}
	c.chatLog = nil
}

// ImageRef returns the reference of the current session, if any.
func (c *Controller) ImageRef() string { return c.imageRef }

// PrimaryPending reports whether a primary analysis is in flight.
func (c *Controller) PrimaryPending() bool { return c.primaryPending }

// PrimaryResult returns the primary analysis payload, or nil before success.
func (c *Controller) PrimaryResult() *models.AnalysisResult { return c.primary }

// PrimaryErr returns the last primary-analysis error message, if any.
func (c *Controller) PrimaryErr() string { return c.primaryErr }

// Ready reports whether the secondary operations are unlocked.
func (c *Controller) Ready() bool { return c.primary != nil }

// Slot returns a copy of the given secondary slot.
func (c *Controller) Slot(kind Kind) Slot { return c.slots[kind] }

// ChatLog returns the session's chat entries in order.
func (c *Controller) ChatLog() []models.ChatMessage { return c.chatLog }

// StartAnalysis begins a new session for ref. The previous session is
// replaced atomically: result, every secondary slot, and the chat log are
// all cleared before the session enters the primary-pending state. Returns
// false (without touching state) when ref is empty after trimming.
//
// A new submission while an earlier one is still outstanding is allowed;
// the earlier response is later discarded by the reference guard in
// ResolvePrimary.
func (c *Controller) StartAnalysis(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	c.Reset()
	c.imageRef = ref
	c.primaryPending = true
	return true
}

// ResolvePrimary applies the outcome of a primary analysis that was issued
// for ref. The guard is keyed on the reference alone: a response whose
// reference no longer matches the session is discarded and reported as
// false, while duplicate attempts for the same reference apply in arrival
// order, each overwriting the last. On failure the session stays without a
// result so the user can resubmit.
func (c *Controller) ResolvePrimary(ref string, result *models.AnalysisResult, err error) bool {
	if ref != c.imageRef {
		return false
	}
	c.primaryPending = false
	if err != nil {
		c.primary = nil
		c.primaryErr = err.Error()
		return true
	}
	c.primary = result
	c.primaryErr = ""
	return true
}

// Trigger moves a secondary slot to pending. It is a no-op returning false
// when the primary result is missing, the slot is already pending, or kind
// is KindChat (chat is driven through SendChat). The caller issues the
// remote call only when Trigger returns true.
func (c *Controller) Trigger(kind Kind) bool {
	if kind == KindChat {
		return false
	}
	if !c.Ready() {
		return false
	}
	if c.slots[kind].Status == StatusPending {
		return false
	}
	c.slots[kind] = Slot{Status: StatusPending}
	return true
}

// Resolve applies the outcome of a secondary call issued for ref. The
// result is discarded unless ref still matches the session and the slot is
// still pending. A failure is recorded on this slot only; other slots and
// the primary result are untouched.
func (c *Controller) Resolve(kind Kind, ref string, payload interface{}, err error) bool {
	if ref != c.imageRef || c.slots[kind].Status != StatusPending {
		return false
	}
	if err != nil {
		c.slots[kind] = Slot{Status: StatusFailed, Err: err.Error()}
		return true
	}
	c.slots[kind] = Slot{Status: StatusSucceeded, Payload: payload}
	return true
}

// SendChat appends the user's message optimistically and marks the chat
// slot pending. It returns the trimmed message and whether the caller
// should issue the remote call. No-ops when the primary result is missing,
// the text trims to empty, or a chat call is already in flight.
func (c *Controller) SendChat(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !c.Ready() || c.slots[KindChat].Status == StatusPending {
		return "", false
	}
	c.chatLog = append(c.chatLog, models.ChatMessage{Speaker: models.SpeakerUser, Text: text})
	c.slots[KindChat] = Slot{Status: StatusPending}
	return text, true
}

// ResolveChat applies a chat completion issued for ref. Failures degrade to
// the fixed fallback assistant reply; the user's entry is never retracted.
func (c *Controller) ResolveChat(ref, reply string, err error) bool {
	if ref != c.imageRef || c.slots[KindChat].Status != StatusPending {
		return false
	}
	if err != nil {
		c.chatLog = append(c.chatLog, models.ChatMessage{Speaker: models.SpeakerAssistant, Text: ChatFallbackReply})
		c.slots[KindChat] = Slot{Status: StatusFailed, Err: err.Error()}
		return true
	}
	c.chatLog = append(c.chatLog, models.ChatMessage{Speaker: models.SpeakerAssistant, Text: reply})
	c.slots[KindChat] = Slot{Status: StatusSucceeded, Payload: reply}
	return true
}
