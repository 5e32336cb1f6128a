// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BCEL-Go")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "bcel.log")
	viper.SetDefault("main.log.maxsizemb", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxagedays", 28)

	viper.SetDefault("fit.method", "grid")
	viper.SetDefault("fit.restarts", 10)
	viper.SetDefault("fit.maxiter", 2000)
	viper.SetDefault("fit.gridsize", 200)
	viper.SetDefault("fit.gridsamples", 1000)
	viper.SetDefault("fit.worlds", 128)
	viper.SetDefault("fit.seed", 42)
	viper.SetDefault("fit.maxworkers", 0)
	viper.SetDefault("fit.tempering", 1.0)

	viper.SetDefault("sampler.draws", 500)
	viper.SetDefault("sampler.tune", 500)
	viper.SetDefault("sampler.chains", 2)
	viper.SetDefault("sampler.maxobservations", 500)

	viper.SetDefault("priors.overlaypath", "")

	viper.SetDefault("output.directory", "output")
	viper.SetDefault("output.pretty", true)
}
