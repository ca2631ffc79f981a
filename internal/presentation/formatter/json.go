package formatter

import (
	"github.com/bytedance/sonic"
)

// JSON encodes r as indented JSON.
func JSON(r Report) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(r, "", "  ")
}
