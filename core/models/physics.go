package models

// Physical constants in cgs units.
const (
	speedOfLight    = 2.99792458e10  // cm/s
	solarMass       = 1.98892e33     // g
	solarRadius     = 6.957e10       // cm
	boltzmann       = 1.380649e-16   // erg/K
	planck          = 6.62607015e-27 // erg s
	stefanBoltzmann = 5.670374e-5    // erg/cm^2/s/K^4
	megaparsec      = 3.0856775814913673e24 // cm
	daySeconds      = 86400.0
)

// Radioactive decay constants for Ni56 -> Co56 -> Fe56.
const (
	nickelEnergyRate = 3.9e10  // erg/s/g
	cobaltEnergyRate = 6.78e9  // erg/s/g
	nickelLifeDays   = 8.77    // e-folding time of Ni56 in days
	cobaltLifeDays   = 111.3   // e-folding time of Co56 in days
)

// mJyPerCgs converts erg/s/cm^2/Hz to millijansky.
const mJyPerCgs = 1e26

// abMagZeroFluxJy is the AB system zero point in jansky.
const abMagZeroFluxJy = 3631.0
