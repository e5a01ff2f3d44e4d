// Package audio turns playlists into path tables and media files into
// metadata records, then writes regenerated playlists back out.
//
// # Reading Playlists
//
// PlaylistReader parses M3U and M3U8 files. Comment and blank lines are
// skipped, relative paths resolve against the playlist directory, and only
// files that exist are kept:
//
//	reader := audio.NewPlaylistReader(ioutils.OS{}, false)
//	result, err := reader.Read("/music/Mix.m3u8")
//	for _, entry := range result.Table.Entries() {
//	    fmt.Println(entry.Path)
//	}
//
// # Extracting Metadata
//
// Extractor merges the container dictionary and the stream dictionaries of
// a file into a model.MetadataRecord, first non-empty value wins:
//
//	extractor := audio.NewExtractor(chain)
//	rec, usable, err := extractor.Extract(ctx, entry.Path)
//
// # Writing Playlists
//
// PlaylistWriter emits plain M3U: one relative path per line, each line
// terminated by '\n'.
//
//	writer := audio.NewPlaylistWriter(ioutils.OS{})
//	err := writer.Write("/music/out/Mix.m3u8", []string{"Files/A/B/C.flac"})
package audio
