package cli

import (
	"io"
	"os"
	"time"

	"github.com/julianstephens/momentum/internal/dashboard"
	"github.com/julianstephens/momentum/internal/keyring"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/utils"
)

// Context is handed to every command's Run. Store is nil for commands that
// do not touch the database.
type Context struct {
	Store    storage.Provider
	Location *time.Location
	Keyring  keyring.Entry
	Out      io.Writer
	Now      func() time.Time
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Clock returns the current instant
func (c *Context) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Context) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Today is the day key every command of this run works against
func (c *Context) Today() string {
	return utils.TodayKey(c.Clock().In(c.location()))
}

// Controller binds a ToggleController to the store and today's key
func (c *Context) Controller() *dashboard.ToggleController {
	return dashboard.NewToggleController(c.Store, c.Today(), dashboard.WithClock(c.Clock))
}
