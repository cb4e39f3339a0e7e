package session

import (
	"os"
	"testing"

	"fyne.io/fyne/v2/test"
)

// Binding updates are routed through the current app's driver, so the suite
// runs against the headless test app.
func TestMain(m *testing.M) {
	test.NewApp()
	os.Exit(m.Run())
}
