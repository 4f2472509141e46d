package qrcode

import (
	"errors"
	"fmt"

	"github.com/kbinani/screenshot"

	"overtls-manager/internal/debuglog"
)

// ScanScreen captures every active display and returns the texts of all QR
// codes found, one per display at most.
func ScanScreen() ([]string, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, errors.New("ScanScreen: no active displays")
	}
	var (
		found   []string
		lastErr error
	)
	for i := 0; i < n; i++ {
		img, err := screenshot.CaptureDisplay(i)
		if err != nil {
			lastErr = fmt.Errorf("ScanScreen: capture display %d: %w", i, err)
			debuglog.WarnLog("%v", lastErr)
			continue
		}
		text, err := Decode(img)
		if err != nil {
			debuglog.DebugLog("ScanScreen: display %d: %v", i, err)
			continue
		}
		found = append(found, text)
	}
	if len(found) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNoCode
	}
	return found, nil
}
