package addressbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contactio/go-contacts/addressbook"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{
			name: "already E.164",
			raw:  "+14155552671",
			want: "+14155552671",
		},
		{
			name: "national format uses region",
			raw:  "(415) 555-2671",
			want: "+14155552671",
		},
		{
			name:   "explicit region",
			raw:    "020 7946 0958",
			region: "GB",
			want:   "+442079460958",
		},
		{
			name: "international prefix overrides region",
			raw:  "+44 20 7946 0958",
			want: "+442079460958",
		},
		{
			name: "empty passes through",
			raw:  "",
			want: "",
		},
		{
			name:    "garbage",
			raw:     "not-a-number",
			wantErr: true,
		},
		{
			name:    "too short",
			raw:     "12",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := addressbook.NormalizePhone(tt.raw, tt.region)

			if tt.wantErr {
				assert.ErrorIs(t, err, addressbook.ErrInvalidPhoneNumber)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
