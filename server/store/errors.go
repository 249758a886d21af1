package store

import (
	"github.com/pkg/errors"
)

const (
	errorOpen           = "could not open store"
	errorMigrate        = "could not migrate schema"
	errorCreateSession  = "could not create session"
	errorInsertRound    = "could not insert round"
	errorSaveScoreboard = "could not save scoreboard"
	errorSessionScore   = "could not load scoreboard"
	errorStats          = "could not aggregate stats"
	errorInsertContact  = "could not insert contact"
	errorMarkContact    = "could not update contact"
	errorInsertHand     = "could not insert poker hand"
)

var (
	ErrNotFound = errors.New("not found")
)

func wrapOpen(err error) error           { return errors.Wrap(err, errorOpen) }
func wrapMigrate(err error) error        { return errors.Wrap(err, errorMigrate) }
func wrapCreateSession(err error) error  { return errors.Wrap(err, errorCreateSession) }
func wrapInsertRound(err error) error    { return errors.Wrap(err, errorInsertRound) }
func wrapSaveScoreboard(err error) error { return errors.Wrap(err, errorSaveScoreboard) }
func wrapSessionScore(err error) error   { return errors.Wrap(err, errorSessionScore) }
func wrapStats(err error) error          { return errors.Wrap(err, errorStats) }
func wrapInsertContact(err error) error  { return errors.Wrap(err, errorInsertContact) }
func wrapMarkContact(err error) error    { return errors.Wrap(err, errorMarkContact) }
func wrapInsertHand(err error) error     { return errors.Wrap(err, errorInsertHand) }
