// Package estimator estimates the remaining driving range of an electric
// vehicle from its state of charge and a rolling window of recent energy
// consumption samples.
//
// The estimator keeps at most WindowSize consumption samples (kWh/km). When no
// usable average exists the vehicle's default range factor (km/kWh) is used.
package estimator
