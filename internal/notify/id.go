package notify

import "unicode/utf16"

// DeriveNotificationID maps a task's string id to the numeric id required by
// platform notification APIs. The fold runs over UTF-16 code units with
// 32-bit signed wraparound at every step, so ids persisted by older clients
// keep resolving to the same number. Collisions between distinct task ids are
// possible and accepted.
func DeriveNotificationID(taskID string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(taskID)) {
		hash = (hash << 5) - hash + int32(unit)
	}
	rem := hash % 2147483647
	if rem < 0 {
		rem = -rem
	}
	return rem
}
