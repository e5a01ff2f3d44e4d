// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - The FileSystem capability (existence, mkdir, hard links, whole-file I/O)
//   - Path segment sanitization
//   - Creation of intermediate directories
//   - Cover art resizing and JPEG conversion
//
// # File System
//
//	fsys := ioutils.OS{}
//	if err := ioutils.EnsureParents(fsys, dest); err != nil {
//	    return err
//	}
//	err := fsys.Link(src, dest)
//	if ioutils.IsCrossDevice(err) {
//	    // source and output live on different volumes
//	}
//
// # Sanitization
//
// Use Sanitize on each path segment built from metadata:
//
//	safe := ioutils.Sanitize("Song: Part 1/2") // Returns "Song  Part 1 2"
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
