package state

import (
	"strconv"

	id "chainid/pkg/domain"
)

const (
	LedgerScope  = "ledger"
	NextAppIDKey = "ledger/next_app_id"
	appKeyPrefix = "app/"
	metaSlot     = "meta"
)

// AppScope is the serialization scope of every call to app.
func AppScope(app id.AppID) string {
	return appKeyPrefix + strconv.FormatUint(uint64(app), 10)
}

// AppKey returns the key of slot within app's namespace.
func AppKey(app id.AppID, slot string) string {
	return AppScope(app) + "/" + slot
}

// MetaKey holds the deployment record of app.
func MetaKey(app id.AppID) string {
	return AppKey(app, metaSlot)
}
