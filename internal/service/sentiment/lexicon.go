// internal/service/sentiment/lexicon.go

package sentiment

// lexicon maps lowercase tokens to a valence in [-5, 5], AFINN style.
// Unknown tokens are neutral.
var lexicon = map[string]float64{
	"abandoned":    -2,
	"abuse":        -3,
	"accomplish":   2,
	"achievement":  3,
	"admire":       3,
	"adorable":     3,
	"adore":        3,
	"afraid":       -2,
	"aggressive":   -2,
	"agree":        1,
	"alarming":     -2,
	"amazing":      4,
	"angry":        -3,
	"annoyed":      -2,
	"annoying":     -2,
	"anxious":      -2,
	"appalling":    -3,
	"appreciate":   2,
	"attack":       -1,
	"awesome":      4,
	"awful":        -3,
	"bad":          -3,
	"beautiful":    3,
	"best":         3,
	"betray":       -3,
	"bitter":       -2,
	"blame":        -2,
	"bless":        2,
	"boring":       -2,
	"brave":        2,
	"breathtaking": 5,
	"brilliant":    4,
	"broken":       -1,
	"brutal":       -3,
	"calm":         2,
	"celebrate":    3,
	"charming":     3,
	"cheat":        -3,
	"cheerful":     2,
	"clean":        2,
	"clever":       2,
	"comfort":      2,
	"confident":    2,
	"confused":     -2,
	"cool":         1,
	"corrupt":      -3,
	"crash":        -2,
	"creative":     2,
	"cruel":        -3,
	"cry":          -1,
	"cute":         2,
	"damage":       -3,
	"danger":       -2,
	"dangerous":    -2,
	"dead":         -3,
	"death":        -2,
	"defeat":       -2,
	"delight":      3,
	"delighted":    3,
	"depressed":    -2,
	"destroy":      -3,
	"die":          -3,
	"dirty":        -2,
	"disappointed": -2,
	"disaster":     -2,
	"disgusting":   -3,
	"dishonest":    -2,
	"dislike":      -2,
	"dreadful":     -3,
	"dumb":         -3,
	"easy":         1,
	"elegant":      2,
	"embarrassed":  -2,
	"encourage":    2,
	"enjoy":        2,
	"enjoyed":      2,
	"epic":         3,
	"evil":         -3,
	"excellent":    3,
	"excited":      3,
	"exciting":     3,
	"fail":         -2,
	"failed":       -2,
	"failure":      -2,
	"fake":         -3,
	"fantastic":    4,
	"fascinating":  3,
	"favorite":     2,
	"fear":         -2,
	"fine":         2,
	"fraud":        -4,
	"free":         1,
	"fresh":        1,
	"friendly":     2,
	"frustrated":   -2,
	"fun":          4,
	"funny":        4,
	"generous":     2,
	"gentle":       3,
	"glad":         3,
	"glorious":     2,
	"good":         3,
	"gorgeous":     3,
	"grateful":     3,
	"great":        3,
	"greed":        -3,
	"gross":        -2,
	"happy":        3,
	"hate":         -3,
	"hated":        -3,
	"heartbreaking": -3,
	"hell":         -4,
	"helpful":      2,
	"hilarious":    2,
	"honest":       2,
	"hope":         2,
	"hopeful":      2,
	"hopeless":     -2,
	"horrible":     -3,
	"horrific":     -3,
	"hug":          2,
	"hurt":         -2,
	"ignorant":     -2,
	"ignore":       -1,
	"impressive":   3,
	"incredible":   4,
	"innovative":   1,
	"insane":       -2,
	"inspiring":    2,
	"interesting":  2,
	"joy":          3,
	"kill":         -3,
	"killed":       -3,
	"kind":         2,
	"laugh":        1,
	"lazy":         -1,
	"lie":          -2,
	"like":         2,
	"lol":          3,
	"lonely":       -2,
	"lose":         -3,
	"loss":         -3,
	"lost":         -3,
	"love":         3,
	"loved":        3,
	"lovely":       3,
	"lucky":        3,
	"mad":          -3,
	"magnificent":  3,
	"mean":         -2,
	"mess":         -2,
	"miserable":    -3,
	"miss":         -2,
	"mistake":      -2,
	"murder":       -2,
	"nasty":        -3,
	"nice":         3,
	"outrage":      -3,
	"outstanding":  5,
	"pain":         -2,
	"painful":      -2,
	"panic":        -3,
	"pathetic":     -2,
	"peace":        2,
	"perfect":      3,
	"pleasant":     3,
	"pleased":      3,
	"poor":         -2,
	"positive":     2,
	"powerful":     2,
	"pretty":       1,
	"problem":      -2,
	"proud":        2,
	"rage":         -2,
	"recommend":    2,
	"respect":      2,
	"rich":         2,
	"rude":         -2,
	"sad":          -2,
	"safe":         1,
	"scam":         -2,
	"scared":       -2,
	"scary":        -2,
	"severe":       -2,
	"shame":        -2,
	"share":        1,
	"shock":        -2,
	"shocking":     -2,
	"sick":         -2,
	"smart":        1,
	"smile":        2,
	"solid":        2,
	"sorry":        -1,
	"stab":         -2,
	"steal":        -2,
	"stolen":       -2,
	"strange":      -1,
	"strong":       2,
	"struggle":     -2,
	"stunning":     4,
	"stupid":       -2,
	"succeed":      3,
	"success":      2,
	"successful":   3,
	"suck":         -3,
	"super":        3,
	"support":      2,
	"sweet":        2,
	"terrible":     -3,
	"terrific":     4,
	"terrified":    -3,
	"terror":       -3,
	"thank":        2,
	"thanks":       2,
	"threat":       -2,
	"thrilled":     5,
	"toxic":        -3,
	"tragedy":      -2,
	"tragic":       -2,
	"trust":        1,
	"ugly":         -3,
	"unbelievable": -1,
	"unhappy":      -2,
	"useful":       2,
	"useless":      -2,
	"victory":      3,
	"violence":     -3,
	"violent":      -3,
	"warm":         1,
	"weak":         -2,
	"wealthy":      2,
	"weird":        -2,
	"welcome":      2,
	"win":          4,
	"winner":       4,
	"wonderful":    4,
	"worry":        -3,
	"worse":        -3,
	"worst":        -3,
	"worthless":    -2,
	"wow":          4,
	"wrong":        -2,
}

// negators flip the valence of the token that follows them.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"neither": true,
	"nobody":  true,
	"nothing": true,
	"dont":    true,
	"don't":   true,
	"cant":    true,
	"can't":   true,
	"won't":   true,
	"wont":    true,
	"isnt":    true,
	"isn't":   true,
	"wasnt":   true,
	"wasn't":  true,
}
