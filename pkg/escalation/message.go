package escalation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
)

// alertMessage builds the SMS body for an escalation. It always names the
// device and the trigger time; location and battery are included when known.
func alertMessage(device *model.Device, event *model.PanicEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "EMERGENCY: %s triggered a panic alert at %s.",
		device.DeviceName, event.TriggeredAt.Format(time.RFC1123))

	if event.Location != nil {
		fmt.Fprintf(&b, " Location: https://maps.google.com/?q=%.6f,%.6f",
			event.Location.Latitude, event.Location.Longitude)
	}
	if event.BatteryLevel != nil {
		fmt.Fprintf(&b, " Battery: %d%%.", *event.BatteryLevel)
	}

	return b.String()
}
