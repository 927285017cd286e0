package addressbook

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region used to interpret phone numbers entered
// without an international prefix.
const DefaultRegion = "US"

// NormalizePhone parses a phone number and returns it in E.164 form.
// Numbers with a leading + carry their own country code; anything else is
// interpreted against region, falling back to DefaultRegion when region is
// empty.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhoneNumber.Clone().WithMetadata(map[string]any{
			"phone_number": raw,
		})
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
