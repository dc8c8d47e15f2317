package domain

import "errors"

var (
	// ErrInsufficientData is returned when a category has fewer than four
	// distinct answers, making round selection impossible.
	ErrInsufficientData = errors.New("category has too few distinct answers")
	// ErrSelectionExhausted is returned when round selection hits its retry
	// ceiling without producing a valid option set.
	ErrSelectionExhausted = errors.New("round selection exhausted retries")
	// ErrStore marks transient document store failures; callers retry these
	// up to a bounded ceiling before surfacing them.
	ErrStore = errors.New("document store error")
	// ErrNotAuthenticated is returned when no current user identity exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInsufficientFunds rejects a purchase the user cannot afford.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadySpunToday rejects a second free spin within a calendar day.
	ErrAlreadySpunToday = errors.New("free spin already used today")
	// ErrSpinInFlight rejects a spin while another one is still settling.
	ErrSpinInFlight = errors.New("spin already in flight")
	// ErrCategoryLocked rejects playing a category the user has not unlocked.
	ErrCategoryLocked = errors.New("category locked")
	// ErrNoActiveRound is returned when an answer arrives outside RoundActive.
	ErrNoActiveRound = errors.New("no active round")
	// ErrSessionNotFound is returned when a user has no game session.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrUnknownCategory indicates a category name outside the catalog.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownDifficulty indicates an unsupported difficulty name.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
