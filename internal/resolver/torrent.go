package resolver

import "context"

// ResolveTorrentArt returns the first image embedded in a torrent page's
// description.
func (r *Resolver) ResolveTorrentArt(ctx context.Context, pageURL string) (Artwork, bool, error) {
	art, found, err := r.torrentArt.Do(ctx, func(ctx context.Context) (Artwork, bool, error) {
		url, found, err := r.torrent.ExtractImage(ctx, pageURL)
		if err != nil || !found {
			return Artwork{}, false, err
		}
		return Artwork{URL: url, Source: SourceTorrent}, true, nil
	}, pageURL)
	if err == nil {
		r.observe(KindTorrent, art.Source)
	}
	return art, found, err
}
