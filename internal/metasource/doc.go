// Package metasource provides the metadata source capability: given a media
// file, it returns the container-level tag dictionary and one dictionary per
// stream.
//
// Sources:
//   - FFprobe: runs ffprobe and reads format.tags and streams[].tags
//   - TagLib: TagLib property map (go.senan.xyz/taglib)
//   - Tag: pure Go reader (github.com/dhowden/tag)
//   - ID3: ID3v2 text frames (github.com/bogem/id3v2)
//
// All sources report keys using ffmpeg dictionary names ("artist",
// "album_artist", "track", ...), so consumers can match them uniformly.
//
// A Chain tries sources in order:
//
//	chain, err := metasource.New([]string{"ffprobe", "taglib"}, metasource.Options{})
//	h, err := chain.Open(ctx, "/music/a.flac")
//	defer h.Close()
//	artist, _ := h.ContainerMetadata().Get("artist")
package metasource
