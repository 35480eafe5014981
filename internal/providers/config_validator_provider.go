package providers

import (
	"github.com/gookit/validate"

	"tuner/internal/ranking"
	"tuner/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate fills ranking defaults, then checks the struct tags.
func (cv *CnfValidator) Validate() error {
	if cv.conf.Ranking.ClusterGapSeconds <= 0 {
		cv.conf.Ranking.ClusterGapSeconds = ranking.DefaultClusterGap
	}
	if cv.conf.Ranking.MaxPeaks <= 0 {
		cv.conf.Ranking.MaxPeaks = ranking.DefaultMaxPeaks
	}

	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors.OneError()
	}
	return nil
}
