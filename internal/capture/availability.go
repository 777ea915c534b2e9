package capture

import (
	"fmt"
	"os"
)

// DevicePath returns the Linux device node for a camera device ID.
func DevicePath(deviceID int) string {
	return fmt.Sprintf("/dev/video%d", deviceID)
}

// DeviceAvailable reports whether the camera device node exists and is
// readable. It does not open a capture session; the capture loop does that.
func DeviceAvailable(deviceID int) bool {
	path := DevicePath(deviceID)

	if _, err := os.Stat(path); err != nil {
		return false
	}

	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	defer file.Close()

	return true
}
