package front

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2/middleware/session"
)

const flashKey = "flashes"

// Flash levels map onto Bootstrap alert classes.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func addFlash(sess *session.Session, level, message string) {
	flashes := readFlashes(sess)
	flashes = append(flashes, Flash{Level: level, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	sess.Set(flashKey, string(raw))
}

func popFlashes(sess *session.Session) []Flash {
	flashes := readFlashes(sess)
	sess.Delete(flashKey)
	return flashes
}

func readFlashes(sess *session.Session) []Flash {
	raw, ok := sess.Get(flashKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}
