package resolve

import "strings"

// TitleFromContentDisposition takes the text after "filename=", strips
// surrounding quotes and keeps everything before the first dot. The second
// return is false when the header names no filename.
func TitleFromContentDisposition(header string) (string, bool) {
	_, after, found := strings.Cut(header, "filename=")
	if !found {
		return "", false
	}
	if i := strings.Index(after, "filename="); i >= 0 {
		after = after[:i]
	}
	after = strings.Trim(after, `"`)
	name, _, _ := strings.Cut(after, ".")
	return name, true
}

// TitleFromURL returns the text after the last "/" without its extension
// when the URL ends in ".pdf" (any case). Query strings are part of the
// URL, so "view?file=AB-1-2.pdf" yields "view?file=AB-1-2".
func TitleFromURL(rawURL string) (string, bool) {
	if !strings.HasSuffix(strings.ToLower(rawURL), ".pdf") {
		return "", false
	}
	seg := rawURL[strings.LastIndex(rawURL, "/")+1:]
	return seg[:len(seg)-len(".pdf")], true
}
