// Package storage writes the pipeline's output: one directory per post,
// named after the post's creation time (YYYYMMDD_HHMMSS, UTC), holding
// the downloaded images (image_1.ext, image_2.ext, ...) and a tweet.txt
// metadata summary.
//
// Files are written via temporary files and atomic renames. Directory
// name collisions between different posts in the same second are
// disambiguated with a numeric suffix; a directory already holding the
// same post (matched by the ID in tweet.txt) is reused, which makes
// reruns overwrite deterministically instead of duplicating output.
package storage
