package redis

import "fmt"

// Key prefix for all save data
const keyPrefix = "navalcombat"

// primaryKey returns the Redis key for the current save in a slot
func primaryKey(slot string) string {
	return fmt.Sprintf("%s:save:%s:primary", keyPrefix, slot)
}

// backupKey returns the Redis key for the previous save in a slot
func backupKey(slot string) string {
	return fmt.Sprintf("%s:save:%s:backup", keyPrefix, slot)
}
