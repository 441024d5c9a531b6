package domain

// Meme is the result of compositing a quote onto an image: the path of the
// newly written output file. The core creates memes and never mutates or
// deletes them; cleanup of the output directory is an external concern.
type Meme struct {
	// Path is the location of the composited image on disk.
	Path string
}
