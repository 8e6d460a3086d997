package chat

import (
	"strings"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/auth"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/message"
)

// CommandPrefix marks a chat message as a command.
const CommandPrefix = "/"

// AnnouncementTimer is the fixed display duration, in seconds, of a
// server-wide announcement.
const AnnouncementTimer int32 = 300

// CommandTable routes slash commands and gates privileged ones behind
// permissions. The privileged map is immutable after construction.
type CommandTable struct {
	privileged map[string]auth.Permission
}

// DefaultCommandTable returns the base command policy: ANNOUNCEMENT, gated
// on the send-announcement permission.
func DefaultCommandTable() *CommandTable {
	return &CommandTable{
		privileged: map[string]auth.Permission{
			"ANNOUNCEMENT": auth.PermSendAnnouncement,
		},
	}
}

// IsCommand reports whether text should be parsed as a command rather than
// ordinary chat.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, CommandPrefix)
}

// Dispatch parses "/COMMAND args" and returns the payload the command
// produces, or nil for unrecognized commands, missing arguments, and
// privileged commands the identity is not allowed to run. Command names are
// case-insensitive.
func (t *CommandTable) Dispatch(text string, identity auth.Identity) []byte {
	text = strings.TrimPrefix(text, CommandPrefix)
	cmd, args, _ := strings.Cut(text, " ")
	cmd = strings.ToUpper(cmd)

	if perm, ok := t.privileged[cmd]; ok && !identity.HasPermission(perm) {
		return nil
	}

	switch cmd {
	case "ANNOUNCEMENT":
		args = strings.TrimSpace(args)
		if args == "" {
			return nil
		}
		return message.AnnouncementPayload(message.Announcement{
			Message: args,
			Timer:   AnnouncementTimer,
		})
	default:
		return nil
	}
}
