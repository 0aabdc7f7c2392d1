package timezone

import (
	"time"
	_ "time/tzdata"
)

// Location is where the courts are, timestamps shown to the operator and
// kept in the journal use it.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

func Now() time.Time {
	return time.Now().In(Location)
}

// Format renders t in court time, the way the session log shows it.
func Format(t time.Time) string {
	return t.In(Location).Format("2006-01-02 15:04:05 MST")
}
