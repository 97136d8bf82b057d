package engine

import (
	"context"
	"errors"
	"log"

	"github.com/Patch-lnd/AttendanceSystem/internal/hub"
	"github.com/Patch-lnd/AttendanceSystem/internal/models"
	"github.com/Patch-lnd/AttendanceSystem/internal/storage"
	"github.com/Patch-lnd/AttendanceSystem/internal/validation"
)

// PresenceEngine flips a badge holder's presence flag on every scan.
type PresenceEngine struct {
	base
}

// ToggleResult carries the user as persisted after the toggle.
type ToggleResult struct {
	User        models.User
	NewPresence bool
}

// Toggle inverts the presence of the user owning badgeID and broadcasts the
// new state once the write succeeded. Two calls in a row restore the original
// state. Failures are never broadcast.
func (e *PresenceEngine) Toggle(ctx context.Context, badgeID string) (ToggleResult, error) {
	badgeID, err := validation.RequireText(badgeID, "rfid_uid")
	if err != nil {
		return ToggleResult{}, newError(KindValidation, MsgBadgeMissing, err)
	}

	ctx, done, err := e.acquire(ctx, badgeID)
	if err != nil {
		log.Printf("❌ [ATTENDANCE] waiting for badge %s: %v", badgeID, err)
		return ToggleResult{}, newError(KindStore, MsgLookupFailed, err)
	}
	defer done()

	user, err := e.store.FindUserByBadge(ctx, badgeID)
	if errors.Is(err, storage.ErrNotFound) {
		return ToggleResult{}, newError(KindNotFound, MsgUserNotFound, err)
	}
	if err != nil {
		log.Printf("❌ [ATTENDANCE] lookup badge %s: %v", badgeID, err)
		return ToggleResult{}, newError(KindStore, MsgLookupFailed, err)
	}

	newPresence := !user.IsPresent
	err = e.store.SetPresence(ctx, user.ID, newPresence)
	if errors.Is(err, storage.ErrNotFound) {
		return ToggleResult{}, newError(KindNotFound, MsgUserNotFound, err)
	}
	if err != nil {
		log.Printf("❌ [ATTENDANCE] update presence user_id=%d: %v", user.ID, err)
		return ToggleResult{}, newError(KindStore, MsgPresenceFailed, err)
	}
	user.IsPresent = newPresence

	e.events.Broadcast(hub.Event{
		Name: EventAttendanceUpdate,
		Payload: models.PresenceUpdate{
			ID:        user.ID,
			FullName:  user.FullName,
			RFIDUID:   user.RFIDUID,
			IsPresent: newPresence,
		},
	})
	log.Printf("✅ [ATTENDANCE] %s (id=%d) is_present=%t", user.FullName, user.ID, newPresence)

	return ToggleResult{User: user, NewPresence: newPresence}, nil
}
