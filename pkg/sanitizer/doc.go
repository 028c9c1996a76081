// Package sanitizer cleans user supplied text before it is echoed back into
// HTML. It wraps bluemonday policies:
//
//	sanitizer.Escape(`<b>Ann</b>`) // &lt;b&gt;Ann&lt;/b&gt;
//	sanitizer.Text(`<b>Ann</b>`)   // Ann
//	sanitizer.HTML(`<p onclick="x()">Hi</p>`) // <p>Hi</p>
package sanitizer
