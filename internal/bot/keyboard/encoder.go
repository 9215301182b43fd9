package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// CallbackDataLimitBytes is Telegram's hard limit for callback payload size.
const CallbackDataLimitBytes = 64

// Payload joins a dispatch prefix with a numeric reference, enforcing the
// Telegram size limit.
func Payload(prefix string, ref int64) (string, error) {
	data := prefix + strconv.FormatInt(ref, 10)
	if len(data) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(data))
	}

	return data, nil
}

// SplitPayload strips a known prefix off a callback payload, returning the
// remainder and whether the prefix matched.
func SplitPayload(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}

	return data[len(prefix):], true
}
