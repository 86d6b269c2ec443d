package models

import "strings"

// Cache key namespaces. Keys identify one document in both the local cache
// and the remote store; the namespace decides the remote collection.
const (
	SessionKey   = "session"
	SyncQueueKey = "syncQueue"

	nsSchedules = "schedules"
	nsWorkouts  = "workouts"
	nsSettings  = "notificationSettings"
)

// Remote store collection names.
const (
	UsersCollection         = "users"
	SchedulesCollection     = "schedules"
	WorkoutsCollection      = "workouts"
	NotificationsCollection = "notifications"
)

func ScheduleKey(userID string) string {
	return nsSchedules + ":" + userID
}

func WorkoutsKey(userID string) string {
	return nsWorkouts + ":" + userID
}

func NotificationSettingsKey(userID string) string {
	return nsSettings + ":" + userID
}

// CollectionForKey maps a namespaced cache key to its remote collection and
// document id. Keys without a remote counterpart (session, syncQueue) report
// ok=false.
func CollectionForKey(key string) (collection, docID string, ok bool) {
	ns, id, found := strings.Cut(key, ":")
	if !found || id == "" {
		return "", "", false
	}
	switch ns {
	case nsSchedules:
		return SchedulesCollection, id, true
	case nsWorkouts:
		return WorkoutsCollection, id, true
	case nsSettings:
		return NotificationsCollection, id, true
	}
	return "", "", false
}
