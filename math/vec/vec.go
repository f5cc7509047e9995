// Package vec provides generic slice arithmetic over a residue ring
// Z_q, shared by LWE ciphertext operations and polynomial coefficient
// manipulation.
package vec

import "github.com/dkbh/tfhecore/math/num"

// AddAssign computes v0[i] + v1[i] mod q elementwise into vOut.
func AddAssign[T num.Uint](v0, v1 []T, q T, vOut []T) {
	for i := range vOut {
		vOut[i] = (v0[i] + v1[i]) % q
	}
}

// SubAssign computes v0[i] - v1[i] mod q elementwise into vOut.
func SubAssign[T num.Uint](v0, v1 []T, q T, vOut []T) {
	for i := range vOut {
		vOut[i] = (v0[i] + q - v1[i]%q) % q
	}
}

// NegAssign computes -v[i] mod q elementwise into vOut.
func NegAssign[T num.Uint](v []T, q T, vOut []T) {
	for i := range vOut {
		if v[i] == 0 {
			vOut[i] = 0
		} else {
			vOut[i] = q - v[i]
		}
	}
}

// CopyAssign copies src into dst. dst must be at least len(src).
func CopyAssign[T any](src []T, dst []T) {
	copy(dst, src)
}
