// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import "github.com/chewxy/math32"

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec returns a Vec3 from components.
func Vec(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Array returns the vector as a fixed array.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns the vector multiplied by scalar s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the vector length.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Rounded returns each component rounded to the nearest integer.
func (v Vec3) Rounded() (int32, int32, int32) {
	return int32(math32.Round(v.X)), int32(math32.Round(v.Y)), int32(math32.Round(v.Z))
}

// Angle is a pitch/yaw/roll rotation in degrees.
type Angle struct {
	Pitch, Yaw, Roll float32
}
