package game

import (
	"strconv"

	"github.com/atotto/clipboard"
)

// copyText is swapped out in tests.
var copyText = clipboard.WriteAll

// copySeed puts the world seed on the system clipboard.
func copySeed(seed int64) error {
	return copyText(strconv.FormatInt(seed, 10))
}
