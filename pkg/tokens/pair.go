package tokens

import "time"

// Pair is an issued access/refresh token pair. Expiries are unix seconds.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessExp    int64  `json:"access_exp"`
	RefreshExp   int64  `json:"refresh_exp"`
	IsAdmin      bool   `json:"is_admin"`
}

func (p *Pair) AccessExpTime() time.Time  { return time.Unix(p.AccessExp, 0) }
func (p *Pair) RefreshExpTime() time.Time { return time.Unix(p.RefreshExp, 0) }
