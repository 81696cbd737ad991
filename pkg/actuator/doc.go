// Package actuator models the RGB LED strip driven by the agent.
//
// State holds the power flag and the color last shown on the strip. It is
// mutated only by successfully dispatched commands and read by the telemetry
// generator, which classifies it into an LEDStatus.
//
// The strip itself sits behind the Driver interface. Hardware access is not
// part of this module; NopDriver and LogDriver cover hosts without a strip.
package actuator
