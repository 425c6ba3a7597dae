package probe

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-await/await"
)

// HTTP is satisfied once a GET of url returns an accepted status.
func HTTP(ctx context.Context, url string, options ...Option) await.Condition {
	o := newOpts(options)
	return &probe{
		ctx:         ctx,
		description: "http " + url,
		o:           o,
		check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return errors.Wrap(err, "failed to create request")
			}
			for k, v := range o.header {
				req.Header[k] = v
			}

			resp, err := o.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			_, _ = io.Copy(ioutil.Discard, resp.Body)

			if !o.accepts(resp.StatusCode) {
				return errors.Errorf("unexpected status %d", resp.StatusCode)
			}
			return nil
		},
	}
}

func (o opts) accepts(status int) bool {
	if len(o.statuses) == 0 {
		return status >= 200 && status < 300
	}
	_, ok := o.statuses[status]
	return ok
}
