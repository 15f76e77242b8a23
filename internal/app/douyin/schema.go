package douyin

// PageVariant names a known loader-data schema variant of the mobile share
// page. The platform A/B serves either the video page or the note page shape;
// both carry the same videoInfoRes payload under different keys.
type PageVariant string

const (
	VideoPage PageVariant = "video_(id)/page"
	NotePage  PageVariant = "note_(id)/page"
)

// pageVariants is the lookup order for resolveVariant.
var pageVariants = []PageVariant{VideoPage, NotePage}

// routerData mirrors the window._ROUTER_DATA JSON document embedded in the
// share page HTML. Only the fields the extractor navigates are declared.
type routerData struct {
	LoaderData map[string]loaderEntry `json:"loaderData"`
}

type loaderEntry struct {
	VideoInfoRes *videoInfoRes `json:"videoInfoRes"`
}

type videoInfoRes struct {
	ItemList []pageItem `json:"item_list"`
}

type pageItem struct {
	Desc       string          `json:"desc"`
	CreateTime int64           `json:"create_time"`
	Video      pageVideo       `json:"video"`
	Author     *pageAuthor     `json:"author"`
	Statistics *pageStatistics `json:"statistics"`
}

type pageVideo struct {
	Duration int      `json:"duration"`
	Cover    *urlList `json:"cover"`
	PlayAddr *urlList `json:"play_addr"`
}

type pageAuthor struct {
	UID         string   `json:"uid"`
	Nickname    string   `json:"nickname"`
	AvatarThumb *urlList `json:"avatar_thumb"`
	Avatar      string   `json:"avatar"`
}

type pageStatistics struct {
	DiggCount    int `json:"digg_count"`
	CommentCount int `json:"comment_count"`
	ShareCount   int `json:"share_count"`
	CollectCount int `json:"collect_count"`
}

type urlList struct {
	URLList []string `json:"url_list"`
}

func (u *urlList) first() string {
	if u == nil || len(u.URLList) == 0 {
		return ""
	}
	return u.URLList[0]
}

// resolveVariant locates the videoInfoRes payload by trying each known page
// variant in order. A document carrying neither key means the remote layout
// changed (or the id was bogus) and is reported as a structure error.
func resolveVariant(rd *routerData) (*videoInfoRes, PageVariant, error) {
	for _, variant := range pageVariants {
		entry, ok := rd.LoaderData[string(variant)]
		if ok && entry.VideoInfoRes != nil {
			return entry.VideoInfoRes, variant, nil
		}
	}
	return nil, "", newScrapeError(CodeStructure, "cannot find video info in _ROUTER_DATA", nil)
}
