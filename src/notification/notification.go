package notification

import (
	"log"
	"sync"

	"fyne.io/fyne/v2"
)

// maxBody keeps notification text short enough for every platform.
const maxBody = 200

var (
	mu  sync.Mutex
	app fyne.App
)

// Use routes notifications through a running fyne app. Before it is called
// notifications are only logged.
func Use(a fyne.App) {
	mu.Lock()
	app = a
	mu.Unlock()
}

// Show sends a desktop notification and logs it.
func Show(title, body string) {
	body = truncate(body)
	log.Printf("Notification: %s: %s", title, body)
	mu.Lock()
	a := app
	mu.Unlock()
	if a == nil {
		return
	}
	a.SendNotification(fyne.NewNotification(title, body))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxBody {
		return s
	}
	return string(r[:maxBody]) + "..."
}
