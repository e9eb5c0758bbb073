/*
Package num provides two fixed-capacity multi-limb integer types for the
deep-zoom renderer:

Wide is an unsigned integer of up to 8 64-bit limbs (512 bits). Its
operations write into the receiver, big.Int style:

	var w num.Wide
	w.Zero()
	_ = w.AddLimb(math.MaxUint64)
	_ = w.AddLimb(1)
	fmt.Println(w)
	// Output: 18446744073709551616

Scaled is a signed Q64 fixed-point number: a sign and a magnitude of up to
6 32-bit limbs (192 bits), whose real value is magnitude / 2**64. Scaled
is a value type; all operations return new values.

	a, _ := num.ScaledFromFloat64(1.5)
	b, _ := num.ScaledFromFloat64(-2.25)
	p, _ := a.MulScaled(b)
	fmt.Println(p.AsFloat64())
	// Output: -3.375

Operations never truncate silently. A result that does not fit returns an
error of class ErrCapacity; bad decimal input returns ErrMalformed, and
floats that have no Scaled value return ErrDomain. Errors can be tested
with the class's Has method:

	if num.ErrCapacity.Has(err) { ... }

Scaled values travel to kernels as a Q64 pair of words; see Scaled.Raw
and ScaledFromRaw.

Wide and Scaled support the following formatting and marshalling
interfaces:

	- fmt.Formatter
	- fmt.Stringer
	- json.Marshaler
	- json.Unmarshaler
	- encoding.TextMarshaler
	- encoding.TextUnmarshaler
*/
package num
