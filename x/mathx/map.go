package mathx

// MapU16 rescales x from [inMin,inMax] to [outMin,outMax] with 32-bit
// intermediates, clamping out-of-range inputs to the output bounds. An
// inverted output range (outMin > outMax) maps downward.
func MapU16(x, inMin, inMax, outMin, outMax uint16) uint16 {
	if inMax == inMin {
		return outMin
	}
	if x < inMin {
		return outMin
	}
	if x > inMax {
		return outMax
	}
	den := uint32(inMax - inMin)
	if outMin > outMax {
		num := uint32(x-inMin) * uint32(outMin-outMax)
		return outMin - uint16(RoundDiv(num, den))
	}
	num := uint32(x-inMin) * uint32(outMax-outMin)
	return outMin + uint16(RoundDiv(num, den))
}

// MapI32 is the signed variant with 64-bit intermediates.
func MapI32(x, inMin, inMax, outMin, outMax int32) int32 {
	if inMax == inMin {
		return outMin
	}
	if x < inMin {
		x = inMin
	}
	if x > inMax {
		x = inMax
	}
	num := int64(x-inMin) * int64(outMax-outMin)
	den := int64(inMax - inMin)
	return outMin + int32(num/den)
}

// LerpU16 interpolates between a and b with t in Q16 ([0..65535]).
func LerpU16(a, b, t uint16) uint16 {
	da := int32(b) - int32(a)
	res := int32(a) + (da*int32(t))/65535
	if res < 0 {
		return 0
	}
	if res > 65535 {
		return 65535
	}
	return uint16(res)
}
