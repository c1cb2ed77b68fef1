package assessment

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode copies a schema-validated response into out, a pointer to a struct
// with mapstructure tags. Numeric strings are accepted where numbers are
// expected.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
