package respond

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("connection refused"), want: "connection refused"},
		{
			name: "url DSN",
			err:  errors.New("open database: postgres://reviewhub:s3cr3t@db:5432/reviewhub failed"),
			want: "open database: postgres://reviewhub:****@db:5432/reviewhub failed",
		},
		{
			name: "key value DSN",
			err:  errors.New("cannot parse `host=db user=app password=hunter2 dbname=x`"),
			want: "cannot parse `host=db user=app password=**** dbname=x`",
		},
		{
			name: "bearer token",
			err:  errors.New("upstream rejected Bearer eyJhbGciOi.abc.def"),
			want: "upstream rejected Bearer ****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(tt.err))
		})
	}
}
