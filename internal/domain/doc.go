// Package domain is the hazard x exposure x vulnerability impact engine.
//
// # Flow
//
//	ExposurePoint + HazardEventSet + DamageCurve
//	  -> ComputeImpacts   (one EventImpact per event)
//	  -> Summarize        (EAI, impact by return period, exceedance curve)
//	  -> Aggregate        (independent sum across hazard kinds)
//	  -> Price            (AAL, PML, VaR, TVaR, premiums)
//
// Project derives a future HazardEventSet from a baseline under a scenario
// scaling rule; the derived set is then run through the same flow.
//
// # Curves
//
// A DamageCurve maps intensity to a damage ratio in [0,1] by piecewise-linear
// interpolation and clamps outside its range. Curves are validated when built,
// never when evaluated. The CurveCatalog indexes curves by (hazard, asset) and
// resolves a missing asset-specific curve to the GENERIC one:
//
//	FPSO/WIND     -> FPSO/WIND
//	REFINERY/HEAT -> GENERIC/HEAT   (Resolution.Fallback = true)
//	""/WIND       -> GENERIC/WIND   (legacy 0 / 35% / 100% step)
//
// Curve statuses (calibrated, stub, legacy, placeholder) travel with every
// result through ImpactFunction so provisional figures can be flagged.
//
// # Units
//
//	WIND            knots, 10 m wind speed
//	WAVE            metres, significant wave height
//	FLOOD_DEPTH     metres of inundation
//	HEAT_DELTA      degrees C above the 35 C operating threshold
//	FIRE_INTENSITY  MW fire radiative power
//
// # Annualization
//
// EAI is sum(impact_i x frequency_i). The exceedance curve is a step function:
// the probability at loss L is the summed frequency of events with loss >= L.
// VaR, TVaR and PML are read from that step curve; plotting-position variants
// (Weibull, Hazen, Gringorten) are presentation only.
//
// Hazards are combined by simple sum. No correlation between hazards is
// modeled.
package domain
