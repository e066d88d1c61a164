// Package qrcode renders license keys as PNG QR codes so buyers can move a
// key from the success page to another device.
//
//	src, err := qrcode.DataURI(key, 0)
//	// <img src="{src}">
package qrcode
