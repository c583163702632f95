package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/storage"
)

// PrepConfig holds every setting of a preparation run.
type PrepConfig struct {
	// Root is the dataset directory holding rgb/, depth/ and mask/.
	Root string `mapstructure:"root" yaml:"root"`

	// Width and Height are the output resolution. Zero keeps the original size.
	Width  int `mapstructure:"width" yaml:"width" validate:"gte=0"`
	Height int `mapstructure:"height" yaml:"height" validate:"gte=0"`

	// Workers bounds parallel items. Zero uses one worker per CPU.
	Workers int `mapstructure:"workers" yaml:"workers" validate:"gte=0"`

	Extensions  []string `mapstructure:"extensions" yaml:"extensions" default:"[\".png\",\".jpg\"]" validate:"min=1,dive,startswith=."`
	Modalities  []string `mapstructure:"modalities" yaml:"modalities" default:"[\"rgb\",\"depth\",\"mask\"]" validate:"min=1,unique,dive,oneof=rgb depth mask"`
	JPEGQuality int      `mapstructure:"jpeg_quality" yaml:"jpeg_quality" default:"95" validate:"gte=1,lte=100"`

	// Interpolation resizes rgb and depth images. Masks are always sampled nearest.
	Interpolation string `mapstructure:"interpolation" yaml:"interpolation" default:"bilinear" validate:"oneof=nearest bilinear linear"`

	// DeleteOriginal removes the source directories after a run without failures.
	DeleteOriginal bool `mapstructure:"delete_original" yaml:"delete_original"`

	// Report is the path of the JSON run report. Empty disables it.
	Report string `mapstructure:"report" yaml:"report"`
	// Metrics is the path metrics are written to in text exposition format.
	Metrics string `mapstructure:"metrics" yaml:"metrics"`

	Watch   WatchConfig            `mapstructure:"watch" yaml:"watch"`
	Log     logging.Config         `mapstructure:"log" yaml:"log"`
	Publish storage.ProviderConfig `mapstructure:"publish" yaml:"publish"`
}

// WatchConfig configures incremental mask conversion.
type WatchConfig struct {
	// Quiet is how long a file must stay unchanged before it is converted.
	Quiet time.Duration `mapstructure:"quiet" yaml:"quiet" default:"500ms" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(PrepConfig)
		if (cfg.Width == 0) != (cfg.Height == 0) {
			sl.ReportError(cfg.Width, "Width", "width", "both_or_neither", "height")
		}
	}, PrepConfig{})
	return v
}

// Validate checks the configuration and reports the first invalid field.
func (c *PrepConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		field := strings.TrimPrefix(fe.Namespace(), "PrepConfig.")
		return apperrors.NewInvalid(field, fe.Value(), reason).WithInnerError(err)
	}
	return apperrors.WrapWithType(err, apperrors.ErrorTypeInvalid, "invalid config")
}

// setViperDefaults registers the defaults struct tags cannot express.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log.log-in-terminal", true)
	v.SetDefault("log.compress", true)
	v.SetDefault("publish.type", "local")
}
